package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagSPIPort string
	flagCSPin   string
	flagVerbose bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sdspi-tool",
		Short:         "Bring up and exercise an SD/MMC card over SPI",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&flagSPIPort, "spi", "", "SPI port name (empty selects the first registered port)")
	root.PersistentFlags().StringVar(&flagCSPin, "cs", "", "chip-select GPIO pin name")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log at debug level instead of warnings only")

	root.AddCommand(newInfoCmd())
	root.AddCommand(newReadCmd())
	root.AddCommand(newWriteCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newBenchCmd())

	return root
}

func newToolLogger() *logrus.Logger {
	log := logrus.New()
	if flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	return log
}
