package sdspi

import (
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// Device is a block-device facade over an SD/MMC card attached through a
// synchronous SPI bus. It takes exclusive ownership of the SPI connection
// and chip-select pin passed to New for its entire lifetime; concurrent
// use from multiple goroutines is a caller error this type does not guard
// against (see doc.go).
type Device struct {
	t   *transport
	cmd *commandEngine
	cfg Config
	log *logEntry

	status Status
	card   CardType
	csd    CSD
}

// New constructs a Device bound to the given SPI connection and
// chip-select pin. The device starts in StatusNotInitialized; call
// Initialize before Read/Write/Ioctl.
func New(conn spi.Conn, cs gpio.PinIO, cfg Config) *Device {
	t := &transport{conn: conn, cs: cs}
	log := discardLogger()

	return &Device{
		t:      t,
		cmd:    &commandEngine{t: t, cfg: cfg, log: log},
		cfg:    cfg,
		log:    log,
		status: StatusNotInitialized,
	}
}

// WithLogger attaches a structured logger the device reports through:
// the outcome of Initialize, unexpected CMD0 responses during bring-up, and
// failed reads and writes. Individual commands are not logged. It returns
// the device for chaining.
func (d *Device) WithLogger(log *logrus.Logger) *Device {
	d.log = logrus.NewEntry(log)
	d.cmd.log = d.log
	return d
}

// Status reports the device's current status bits.
func (d *Device) Status() Status {
	return d.status
}

// Reset forces the device back to StatusNotInitialized without touching
// hardware. It is idempotent.
func (d *Device) Reset() {
	d.status = StatusNotInitialized
}

// CardType reports the detected card classification. The result is
// meaningless while Status().NotInitialized() is true.
func (d *Device) CardType() CardType {
	return d.card
}

// Capacity reports the card capacity in bytes and in 512-byte blocks. The
// result is meaningless while Status().NotInitialized() is true.
func (d *Device) Capacity() (bytes, blocks uint64) {
	return d.csd.CapacityBytes(), d.csd.CapacityBlocks()
}

// Initialize runs the bring-up FSM: warm-up, enter SPI mode, enable CRC,
// classify the card, leave idle, read the OCR (SD2 candidates), and read
// the CSD. On success it clears StatusNotInitialized. On failure it
// surfaces ErrCardNotFound wrapped in HardwareError and leaves status as
// StatusNotInitialized|StatusErrorOccurred.
func (d *Device) Initialize() error {
	if !d.status.NotInitialized() {
		return ErrAlreadyInitialized
	}

	card, csd, err := d.runInitFSM()
	if err != nil {
		d.log.WithError(err).Error("sdspi: card initialization failed")
		d.status = StatusNotInitialized | StatusErrorOccurred
		return &HardwareError{Err: ErrCardNotFound}
	}

	d.card = card
	d.csd = csd
	d.status = 0

	d.log.WithFields(logrus.Fields{
		"card_type": card,
		"blocks":    csd.CapacityBlocks(),
	}).Info("sdspi: card initialized")

	return nil
}

// validateBuffer checks that buf is a positive multiple of the block size.
func validateBuffer(buf []byte) error {
	if len(buf) == 0 || len(buf)%BlockSize != 0 {
		return ErrInvalidArgument
	}

	return nil
}

// Read reads len(buf)/BlockSize contiguous blocks starting at lba into
// buf. len(buf) must be a positive multiple of BlockSize.
func (d *Device) Read(buf []byte, lba uint32) error {
	if err := validateBuffer(buf); err != nil {
		return err
	}

	if d.status.NotInitialized() {
		return ErrNotInitialized
	}

	err := d.t.withCS(func() error {
		return d.readBlocks(buf, lba)
	})

	if err != nil {
		d.log.WithError(err).WithField("lba", lba).Warn("sdspi: read failed")
		return &HardwareError{Err: err}
	}

	return nil
}

// Write writes len(buf)/BlockSize contiguous blocks starting at lba from
// buf. len(buf) must be a positive multiple of BlockSize.
func (d *Device) Write(buf []byte, lba uint32) error {
	if err := validateBuffer(buf); err != nil {
		return err
	}

	if d.status.NotInitialized() {
		return ErrNotInitialized
	}

	err := d.t.withCS(func() error {
		return d.writeBlocks(buf, lba)
	})

	if err != nil {
		d.log.WithError(err).WithField("lba", lba).Warn("sdspi: write failed")
		return &HardwareError{Err: err}
	}

	return nil
}

// Ioctl handles the two recognized device-control commands: CtrlSync
// blocks until the card reports idle; GetBlockSize reports the fixed
// 512-byte block size. Any other command fails with ErrNotSupported.
func (d *Device) Ioctl(cmd IoctlCmd) (int, error) {
	switch cmd {
	case CtrlSync:
		if err := d.cmd.waitAvailable(); err != nil {
			return 0, &HardwareError{Err: err}
		}

		return 0, nil
	case GetBlockSize:
		return BlockSize, nil
	default:
		return 0, ErrNotSupported
	}
}
