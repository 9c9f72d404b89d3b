package sdspi

// readDataBlock implements the read data-phase discipline shared by CSD
// reads and block reads: poll for a token, expect a start-block marker,
// receive the payload, then verify its trailing big-endian CRC16.
func (d *Device) readDataBlock(buf []byte) error {
	token, err := d.waitForDataToken()
	if err != nil {
		return err
	}

	if token != tokenDataStartBlock {
		return ErrReadError
	}

	if err := d.t.receiveInto(buf); err != nil {
		return err
	}

	var crcBytes [2]byte
	if err := d.t.receiveInto(crcBytes[:]); err != nil {
		return err
	}

	cardCRC := uint16(crcBytes[0])<<8 | uint16(crcBytes[1])
	hostCRC := crc16Checksum(buf)

	if cardCRC != hostCRC {
		return &CRCError{Card: cardCRC, Host: hostCRC}
	}

	return nil
}

// waitForDataToken polls for a byte that is not 0xFF (busy/idle), up to
// CmdMaxAttempts.
func (d *Device) waitForDataToken() (byte, error) {
	for i := 0; i < d.cfg.cmdMaxAttempts(); i++ {
		b, err := d.t.receive()
		if err != nil {
			return 0, err
		}

		if b != tokenAvailable {
			return b, nil
		}

		delay()
	}

	return 0, ErrTimeoutReadBuffer
}

// writeDataBlock sends token followed by buf and its CRC16, then checks
// the card's data-response token.
func (d *Device) writeDataBlock(token byte, buf []byte) error {
	crc := crc16Checksum(buf)

	if err := d.t.send(token); err != nil {
		return err
	}

	if err := d.t.sendSlice(buf); err != nil {
		return err
	}

	if err := d.t.send(byte(crc >> 8)); err != nil {
		return err
	}

	if err := d.t.send(byte(crc)); err != nil {
		return err
	}

	resp, err := d.t.receive()
	if err != nil {
		return err
	}

	if resp&dataResponseMask != dataResponseAccepted {
		return ErrWriteError
	}

	return nil
}

// lbaArg converts a logical block address to the wire argument expected by
// the card's classification: byte-addressed for SD1/SD2, block-addressed
// for SDHC.
func (d *Device) lbaArg(lba uint32) uint32 {
	if d.card == CardSDHC {
		return lba
	}

	return lba * BlockSize
}

// readBlocks implements the read path: single CMD17 + readDataBlock, or
// CMD18 streamed over each 512-byte chunk terminated by CMD12.
func (d *Device) readBlocks(buf []byte, lba uint32) error {
	addr := d.lbaArg(lba)
	blocks := len(buf) / BlockSize

	if blocks == 1 {
		if _, err := d.cmd.sendCommand(cmd17, addr); err != nil {
			return err
		}

		return d.readDataBlock(buf)
	}

	if _, err := d.cmd.sendCommand(cmd18, addr); err != nil {
		return err
	}

	for off := 0; off < len(buf); off += BlockSize {
		if err := d.readDataBlock(buf[off : off+BlockSize]); err != nil {
			return err
		}
	}

	_, err := d.cmd.sendCommand(cmd12, 0)
	return err
}

// writeBlocks implements the write path: single CMD24 + writeDataBlock +
// post-write status check, or CMD25 streamed over each 512-byte chunk
// terminated by STOP_TRAN.
func (d *Device) writeBlocks(buf []byte, lba uint32) error {
	addr := d.lbaArg(lba)
	blocks := len(buf) / BlockSize

	if blocks == 1 {
		if _, err := d.cmd.sendCommand(cmd24, addr); err != nil {
			return err
		}

		if err := d.writeDataBlock(tokenDataStartBlock, buf); err != nil {
			return err
		}

		if err := d.cmd.waitAvailable(); err != nil {
			return err
		}

		r1, err := d.cmd.sendCommand(cmd13, 0)
		if err != nil {
			return err
		}

		if r1 != R1Ready {
			return ErrWriteError
		}

		status, err := d.t.receive()
		if err != nil {
			return err
		}

		if status != 0 {
			return ErrWriteError
		}

		return nil
	}

	if _, err := d.cmd.sendCommand(cmd25, addr); err != nil {
		return err
	}

	for off := 0; off < len(buf); off += BlockSize {
		if err := d.cmd.waitAvailable(); err != nil {
			return err
		}

		if err := d.writeDataBlock(tokenWriteMultiple, buf[off:off+BlockSize]); err != nil {
			return err
		}
	}

	// Open question (spec §9): the source does not issue a CMD13 status
	// check after STOP_TRAN on the multi-block path, unlike the
	// single-block path. Preserved as specified; see DESIGN.md.
	if err := d.cmd.waitAvailable(); err != nil {
		return err
	}

	return d.t.send(tokenStopTran)
}
