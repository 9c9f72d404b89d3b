package sdspi

// Config tunes the bounded busy-poll loops the driver uses. The zero value
// is valid and selects the defaults below; callers that need a smaller
// footprint or a more patient card only need to set the fields they care
// about.
//
// This is the language-neutral equivalent of the source's compile-time
// configuration type parameter (see spec §9 Design Notes): a plain record
// passed at construction time, so values stay tunable without requiring
// generics or a heap allocation.
type Config struct {
	// CmdMaxAttempts bounds wait-for-token and classification loops.
	CmdMaxAttempts int
	// ReadR1Attempts bounds R1 polling after a command frame is sent.
	ReadR1Attempts int
	// EnterSPIModeAttempts bounds CMD0 retries during bring-up.
	EnterSPIModeAttempts int
}

func (c Config) cmdMaxAttempts() int {
	if c.CmdMaxAttempts > 0 {
		return c.CmdMaxAttempts
	}

	return defaultCmdMaxAttempts
}

func (c Config) readR1Attempts() int {
	if c.ReadR1Attempts > 0 {
		return c.ReadR1Attempts
	}

	return defaultReadR1Attempts
}

func (c Config) enterSPIModeAttempts() int {
	if c.EnterSPIModeAttempts > 0 {
		return c.EnterSPIModeAttempts
	}

	return defaultEnterSPIModeAttempts
}
