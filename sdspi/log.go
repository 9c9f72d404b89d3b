package sdspi

import (
	"io"

	"github.com/sirupsen/logrus"
)

// logEntry is the structured logging context a Device reports its
// initialization results and I/O failures through. Each Device owns its own entry
// instead of sharing a package-global logger, so multiple driver instances
// (one per card/bus) don't interleave unlabeled output.
type logEntry = logrus.Entry

// discardLogger returns a logger whose output goes nowhere, used when
// WithLogger is not called.
func discardLogger() *logEntry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
