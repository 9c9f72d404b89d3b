package sdspi

import "fmt"

// Sentinel facade-level errors. Compare with errors.Is.
var (
	// ErrNotInitialized is returned when Read or Write is attempted before
	// a successful Initialize. Ioctl does not check initialization.
	ErrNotInitialized = fmt.Errorf("sdspi: device not initialized")

	// ErrAlreadyInitialized is returned by Initialize when the device is
	// already initialized.
	ErrAlreadyInitialized = fmt.Errorf("sdspi: device already initialized")

	// ErrInvalidArgument is returned when a read/write buffer is empty or
	// not a multiple of the block size.
	ErrInvalidArgument = fmt.Errorf("sdspi: invalid argument")

	// ErrNotSupported is returned by Ioctl for unrecognized commands.
	ErrNotSupported = fmt.Errorf("sdspi: ioctl not supported")

	// ErrBadState names the condition where an operation cannot proceed
	// given the card's current state. No function in this package returns
	// it.
	ErrBadState = fmt.Errorf("sdspi: bad card state")

	// ErrCardNotFound is the uniform failure classification surfaced by
	// Initialize when the bring-up FSM fails for any reason.
	ErrCardNotFound = fmt.Errorf("sdspi: card not found")

	// ErrCantEnableCRC is returned when CMD59 does not report in-idle.
	ErrCantEnableCRC = fmt.Errorf("sdspi: can't enable CRC checking")

	// ErrRegisterReadError is returned when the CSD read preamble (CMD9)
	// fails.
	ErrRegisterReadError = fmt.Errorf("sdspi: CSD register read error")

	// ErrTimeoutWaitAvailable is returned when polling for the 0xFF idle
	// byte exhausts its attempt budget.
	ErrTimeoutWaitAvailable = fmt.Errorf("sdspi: timeout waiting for card availability")

	// ErrTimeoutReadBuffer is returned when polling for a data-start token
	// exhausts its attempt budget.
	ErrTimeoutReadBuffer = fmt.Errorf("sdspi: timeout waiting for data token")

	// ErrReadError is returned when a data-phase preamble token is neither
	// busy (0xFF) nor a valid start-block token.
	ErrReadError = fmt.Errorf("sdspi: malformed read data-phase")

	// ErrWriteError is returned when the card rejects a written data
	// block, or the post-write status check fails.
	ErrWriteError = fmt.Errorf("sdspi: write rejected by card")
)

// TransportError wraps an error returned by the underlying SPI connection.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("sdspi: transport error: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// SelectError wraps an error returned by the chip-select pin.
type SelectError struct {
	Err error
}

func (e *SelectError) Error() string { return fmt.Sprintf("sdspi: chip-select error: %v", e.Err) }
func (e *SelectError) Unwrap() error { return e.Err }

// TimeoutCommandError is returned when R1 polling for a specific command
// exhausts its attempt budget.
type TimeoutCommandError struct {
	Cmd byte
}

func (e *TimeoutCommandError) Error() string {
	return fmt.Sprintf("sdspi: timeout waiting for response to CMD%d", e.Cmd&^acmdFlag&^cmdBase)
}

// ErrorCommandError is returned when a command's R1 response carries an
// unexpected value given the step that issued it.
type ErrorCommandError struct {
	Cmd byte
	R1  R1
}

func (e *ErrorCommandError) Error() string {
	return fmt.Sprintf("sdspi: CMD%d returned unexpected R1 %#02x", e.Cmd&^acmdFlag&^cmdBase, byte(e.R1))
}

// CRCError is returned when a data block's card-observed CRC16 does not
// match the CRC16 the host computed over the received payload.
type CRCError struct {
	Card uint16
	Host uint16
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("sdspi: CRC16 mismatch: card=%#04x host=%#04x", e.Card, e.Host)
}

// HardwareError wraps any of the above kinds as returned by the facade.
// Callers that need to distinguish kinds should use errors.As/errors.Is on
// the wrapped error directly; HardwareError exists only to satisfy the
// "Hardware(inner)" surface described for the device facade.
type HardwareError struct {
	Err error
}

func (e *HardwareError) Error() string { return fmt.Sprintf("sdspi: %v", e.Err) }
func (e *HardwareError) Unwrap() error { return e.Err }
