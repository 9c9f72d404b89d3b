package sdspi

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// delayDummyCycles is the length of the fixed busy-wait "relaxation" run
// between polls. It exists to give the card a time budget between attempts
// without depending on a wall-clock source; any equivalent cycle-counted
// busy-wait satisfies the protocol.
const delayDummyCycles = 32

// transport drives the SPI connection. It is the only place in the driver
// that touches spi.Conn directly.
type transport struct {
	conn spi.Conn
	cs   gpio.PinIO
}

// delay performs a fixed-count volatile read loop. A real-clock delay is
// not required by the protocol; this just burns cycles.
func delay() {
	var x int
	for i := 0; i < delayDummyCycles; i++ {
		x = i
	}
	_ = x
}

// transfer clocks out b and returns the byte that clocked in.
func (t *transport) transfer(b byte) (byte, error) {
	w := [1]byte{b}
	var r [1]byte

	if err := t.conn.Tx(w[:], r[:]); err != nil {
		return 0, &TransportError{Err: err}
	}

	return r[0], nil
}

// send transmits a single byte, discarding what clocks in.
func (t *transport) send(b byte) error {
	_, err := t.transfer(b)
	return err
}

// receive clocks out a dummy 0xFF byte and returns what clocks in.
func (t *transport) receive() (byte, error) {
	return t.transfer(tokenAvailable)
}

// sendSlice transmits every byte of buf in order.
func (t *transport) sendSlice(buf []byte) error {
	for _, b := range buf {
		if err := t.send(b); err != nil {
			return err
		}
	}

	return nil
}

// receiveInto fills buf by clocking out dummy bytes.
func (t *transport) receiveInto(buf []byte) error {
	for i := range buf {
		b, err := t.receive()
		if err != nil {
			return err
		}

		buf[i] = b
	}

	return nil
}

// skipByte discards a single received byte.
func (t *transport) skipByte() error {
	_, err := t.receive()
	return err
}

// selectCard asserts chip-select (active low).
func (t *transport) selectCard() error {
	if err := t.cs.Out(gpio.Low); err != nil {
		return &SelectError{Err: err}
	}

	return nil
}

// deselectCard deasserts chip-select.
func (t *transport) deselectCard() error {
	if err := t.cs.Out(gpio.High); err != nil {
		return &SelectError{Err: err}
	}

	return nil
}

// withCS asserts CS, invokes f, deasserts CS, and returns f's result. CS is
// always deasserted, including when f errors. If deassertion itself fails,
// that error supersedes a prior success but never overwrites a prior error
// from f.
func (t *transport) withCS(f func() error) error {
	if err := t.selectCard(); err != nil {
		return err
	}

	result := f()

	if err := t.deselectCard(); err != nil {
		if result == nil {
			return err
		}
	}

	return result
}
