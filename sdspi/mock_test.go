package sdspi

import (
	"errors"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// mockConn is a scripted spi.Conn. Each byte transferred by Tx increments a
// one-based call counter; if script holds an entry for that counter the byte clocks in,
// otherwise the bus behaves as idle (0xFF) the way a real card does between
// responses. Building a script this way mirrors the transport's one
// byte-per-transfer discipline (see transport.transfer) instead of
// requiring a fully-dense byte stream.
type mockConn struct {
	script map[int]byte
	calls  int
	tx     []byte

	failAfter int // bytes beyond this count make Tx return errConn; 0 disables
}

var errConn = errors.New("mock: simulated bus failure")

func (m *mockConn) String() string      { return "mockConn" }
func (m *mockConn) Duplex() conn.Duplex { return conn.Full }

func (m *mockConn) Tx(w, r []byte) error {
	for i := range w {
		m.calls++
		if m.failAfter > 0 && m.calls > m.failAfter {
			return errConn
		}

		m.tx = append(m.tx, w[i])

		if r != nil {
			if b, ok := m.script[m.calls]; ok {
				r[i] = b
			} else {
				r[i] = tokenAvailable
			}
		}
	}

	return nil
}

func (m *mockConn) TxPackets(p []spi.Packet) error {
	for _, pkt := range p {
		if err := m.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}

	return nil
}

// mockPin is a gpio.PinIO recording the level history of Out calls.
type mockPin struct {
	levels []gpio.Level
}

func (m *mockPin) String() string   { return "mockPin" }
func (m *mockPin) Halt() error      { return nil }
func (m *mockPin) Name() string     { return "mockPin" }
func (m *mockPin) Number() int      { return 0 }
func (m *mockPin) Function() string { return "mockPin" }

func (m *mockPin) Out(l gpio.Level) error {
	m.levels = append(m.levels, l)
	return nil
}

func (m *mockPin) PWM(gpio.Duty, physic.Frequency) error { return nil }

func (m *mockPin) Read() gpio.Level                     { return gpio.High }
func (m *mockPin) In(gpio.Pull, gpio.Edge) error         { return nil }
func (m *mockPin) WaitForEdge(time.Duration) bool        { return false }
func (m *mockPin) Pull() gpio.Pull                       { return gpio.PullNoChange }
func (m *mockPin) DefaultPull() gpio.Pull                { return gpio.PullNoChange }

// scriptBuilder composes a mockConn's call->byte script call by call,
// tracking the transport's exact Tx-call accounting for each protocol
// primitive so tests read as a trace of the wire sequence rather than a
// flat, hard-to-audit byte dump.
type scriptBuilder struct {
	m   map[int]byte
	pos int
}

func newScript() *scriptBuilder {
	return &scriptBuilder{m: map[int]byte{}}
}

func (s *scriptBuilder) skip(n int) *scriptBuilder {
	s.pos += n
	return s
}

func (s *scriptBuilder) byte(b byte) *scriptBuilder {
	s.pos++
	s.m[s.pos] = b
	return s
}

func (s *scriptBuilder) bytes(bs []byte) *scriptBuilder {
	for _, b := range bs {
		s.byte(b)
	}
	return s
}

// command scripts a plain (non-ACMD, non-CMD12) command: a waitAvailable
// poll (1 call) plus a 6-byte frame (6 calls) plus the R1 response (1
// call), matching commandEngine.sendCommandImpl.
func (s *scriptBuilder) command(r1 byte) *scriptBuilder {
	return s.skip(7).byte(r1)
}

// commandStop scripts CMD12, which reads one extra stuff byte between the
// frame and the R1 response.
func (s *scriptBuilder) commandStop(r1 byte) *scriptBuilder {
	return s.skip(8).byte(r1)
}

// acommand scripts an application command: CMD55 (whose R1 is read but not
// checked by the caller) followed by the main command.
func (s *scriptBuilder) acommand(cmd55R1, mainR1 byte) *scriptBuilder {
	return s.command(cmd55R1).command(mainR1)
}

// cmd8 scripts CMD8's R1 plus, unless the card rejected it as illegal, the
// 4-byte echo-back trailer.
func (s *scriptBuilder) cmd8(r1 byte, trailer [4]byte) *scriptBuilder {
	s.command(r1)
	if r1 != byte(R1InIdleAndIllegal) {
		s.bytes(trailer[:])
	}
	return s
}

// cmd58 scripts CMD58's R1 plus the 4-byte OCR.
func (s *scriptBuilder) cmd58(r1 byte, ocr [4]byte) *scriptBuilder {
	return s.command(r1).bytes(ocr[:])
}

// dataBlock scripts a data-phase read: the start-block token, the payload,
// and its big-endian CRC16 trailer computed from buf itself.
func (s *scriptBuilder) dataBlock(buf []byte) *scriptBuilder {
	s.byte(tokenDataStartBlock)
	s.bytes(buf)
	crc := crc16Checksum(buf)
	return s.byte(byte(crc >> 8)).byte(byte(crc))
}

// csdBlock scripts CMD9's R1 followed by its CSD data block.
func (s *scriptBuilder) csdBlock(r1 byte, raw [16]byte) *scriptBuilder {
	return s.command(r1).dataBlock(raw[:])
}

// writeAccepted scripts a write data-phase response: the len(buf)+3 bytes
// the driver clocks out (token, payload, CRC16) are don't-care, then the
// card's data-response token.
func (s *scriptBuilder) writeAccepted(buf []byte) *scriptBuilder {
	return s.skip(len(buf) + 3).byte(dataResponseAccepted)
}

func (s *scriptBuilder) build() map[int]byte {
	return s.m
}
