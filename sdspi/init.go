package sdspi

import "errors"

// warmupBytes is the number of 0xFF bytes clocked out with CS deasserted
// before entering SPI mode, giving the card at least 74 SCK cycles to
// settle into a known state.
const warmupBytes = 10

// runInitFSM runs the bring-up FSM: warm-up, enter SPI mode, enable CRC,
// classify the card, leave idle, optionally read the OCR, then read the
// CSD. Any failure along the way is translated to ErrCardNotFound by the
// caller (Device.Initialize); this function returns the precise
// underlying error so that translation point has something to log.
func (d *Device) runInitFSM() (CardType, CSD, error) {
	for i := 0; i < warmupBytes; i++ {
		if err := d.t.send(tokenAvailable); err != nil {
			return 0, CSD{}, err
		}
	}

	var card CardType
	var csd CSD

	err := d.t.withCS(func() error {
		if err := d.enterSPIMode(); err != nil {
			return err
		}

		if err := d.enableCRC(); err != nil {
			return err
		}

		var err error
		card, err = d.classify()
		if err != nil {
			return err
		}

		csd, err = d.readCSD(card)
		return err
	})

	return card, csd, err
}

// enterSPIMode issues CMD0 until the card reports in-idle, retrying up to
// EnterSPIModeAttempts times. A command timeout on CMD0 is retried; any
// other error is fatal immediately.
func (d *Device) enterSPIMode() error {
	var lastErr error

	for i := 0; i < d.cfg.enterSPIModeAttempts(); i++ {
		r1, err := d.cmd.sendCommand(cmd0, 0)
		if err == nil {
			if r1 == R1InIdle {
				return nil
			}

			d.log.WithField("r1", r1).Warn("sdspi: unexpected CMD0 response")
			lastErr = &ErrorCommandError{Cmd: cmd0, R1: r1}
			continue
		}

		var timeout *TimeoutCommandError
		if !errors.As(err, &timeout) || timeout.Cmd != cmd0 {
			return err
		}

		lastErr = err
		delay()
	}

	return lastErr
}

// enableCRC issues CMD59 with argument 1; from this point the card
// verifies command CRC7 and data CRC16.
func (d *Device) enableCRC() error {
	r1, err := d.cmd.sendCommand(cmd59, 1)
	if err != nil {
		return err
	}

	if r1 != R1InIdle {
		return ErrCantEnableCRC
	}

	return nil
}

// classify issues CMD8 to distinguish SD1 from SD2/SDHC, then drives
// ACMD41 until the card leaves idle, then (for SD2 candidates) reads the
// OCR to detect the CCS bit and promote to SDHC.
func (d *Device) classify() (CardType, error) {
	card, acmd41Arg, err := d.sendIfCond()
	if err != nil {
		return 0, err
	}

	if err := d.leaveIdle(acmd41Arg); err != nil {
		return 0, err
	}

	if card == CardSD2 {
		promoted, err := d.readOCR()
		if err != nil {
			return 0, err
		}

		if promoted {
			card = CardSDHC
		}
	}

	return card, nil
}

// sendIfCond issues CMD8 arg=0x1AA and classifies the card from the
// response.
func (d *Device) sendIfCond() (CardType, uint32, error) {
	for i := 0; i < d.cfg.cmdMaxAttempts(); i++ {
		r1, err := d.cmd.sendCommand(cmd8, 0x1AA)
		if err != nil {
			return 0, 0, err
		}

		if r1 == R1InIdleAndIllegal {
			return CardSD1, 0x00000000, nil
		}

		var trailer [4]byte
		if err := d.t.receiveInto(trailer[:]); err != nil {
			return 0, 0, err
		}

		if trailer[3] == 0xAA {
			return CardSD2, 0x40000000, nil
		}
	}

	return 0, 0, &TimeoutCommandError{Cmd: cmd8}
}

// leaveIdle repeats ACMD41 with arg until the card reports ready.
func (d *Device) leaveIdle(arg uint32) error {
	for i := 0; i < d.cfg.cmdMaxAttempts(); i++ {
		r1, err := d.cmd.sendCommand(acmd41, arg)
		if err != nil {
			return err
		}

		if r1 == R1Ready {
			return nil
		}
	}

	return &TimeoutCommandError{Cmd: acmd41}
}

// readOCR issues CMD58 and reports whether the CCS bit is set.
func (d *Device) readOCR() (bool, error) {
	r1, err := d.cmd.sendCommand(cmd58, 0)
	if err != nil {
		return false, err
	}

	if r1 != R1Ready {
		return false, &ErrorCommandError{Cmd: cmd58, R1: r1}
	}

	var ocr [4]byte
	if err := d.t.receiveInto(ocr[:]); err != nil {
		return false, err
	}

	return ocr[0]&ocrCCSBit != 0, nil
}

// readCSD issues CMD9 and reads the 16-byte CSD data block, decoding it
// per the card's classification.
func (d *Device) readCSD(card CardType) (CSD, error) {
	r1, err := d.cmd.sendCommand(cmd9, 0)
	if err != nil {
		return CSD{}, err
	}

	if r1 != R1Ready {
		return CSD{}, ErrRegisterReadError
	}

	var raw [16]byte
	if err := d.readDataBlock(raw[:]); err != nil {
		return CSD{}, err
	}

	return decodeCSD(raw, card), nil
}
