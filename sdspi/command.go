package sdspi

// Attempt budgets bounding every busy-poll loop in the driver. These are
// also exposed on Config so callers can tune them; the zero Config yields
// these defaults.
const (
	defaultCmdMaxAttempts        = 256
	defaultReadR1Attempts        = 128
	defaultEnterSPIModeAttempts  = 10
)

// commandEngine frames and sends SD/MMC commands and parses their R1
// response. It does not assert or deassert chip-select; that is the
// caller's responsibility (see transport.withCS).
type commandEngine struct {
	t   *transport
	cfg Config
	log *logEntry
}

// waitAvailable repeatedly receives until a 0xFF byte is seen or the
// attempt budget is exhausted.
func (e *commandEngine) waitAvailable() error {
	for i := 0; i < e.cfg.cmdMaxAttempts(); i++ {
		b, err := e.t.receive()
		if err != nil {
			return err
		}

		if b == tokenAvailable {
			return nil
		}

		delay()
	}

	return ErrTimeoutWaitAvailable
}

// sendCommandImpl frames, emits, and reads the R1 for a single (non-ACMD)
// command index.
func (e *commandEngine) sendCommandImpl(cmd byte, arg uint32) (R1, error) {
	if err := e.waitAvailable(); err != nil {
		return 0, err
	}

	frame := [6]byte{
		cmd,
		byte(arg >> 24),
		byte(arg >> 16),
		byte(arg >> 8),
		byte(arg),
		0,
	}
	frame[5] = (crc7Checksum(frame[:5]) << 1) | 0x01

	if err := e.t.sendSlice(frame[:]); err != nil {
		return 0, err
	}

	if cmd == cmd12 {
		if err := e.t.skipByte(); err != nil {
			return 0, err
		}
	}

	for i := 0; i < e.cfg.readR1Attempts(); i++ {
		b, err := e.t.receive()
		if err != nil {
			return 0, err
		}

		r1 := R1(b)
		if r1.Valid() {
			return r1, nil
		}
	}

	return 0, &TimeoutCommandError{Cmd: cmd}
}

// sendCommand sends cmd with arg, transparently prefixing an application
// command with CMD55 when the ACMD flag is set.
func (e *commandEngine) sendCommand(cmd byte, arg uint32) (R1, error) {
	if cmd&acmdFlag != 0 {
		if _, err := e.sendCommandImpl(cmd55, 0); err != nil {
			return 0, err
		}

		cmd &^= acmdFlag
	}

	return e.sendCommandImpl(cmd, arg)
}
