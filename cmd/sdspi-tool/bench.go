package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kusstas/sdmmc-spi/sdspi"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// newBenchCmd repeatedly reads a single block, throttled to a caller-chosen
// command rate, standing in for the clock budget of a real SPI bus when
// driving a card over a slow bridge.
func newBenchCmd() *cobra.Command {
	var (
		opsPerSec float64
		rounds    int
	)

	cmd := &cobra.Command{
		Use:   "bench <lba>",
		Short: "Repeatedly read one block, throttled to a fixed command rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lba, _, err := parseLBAAndBlocks(append(args, "1"))
			if err != nil {
				return err
			}

			dev, err := openDevice()
			if err != nil {
				return err
			}

			limiter := rate.NewLimiter(rate.Limit(opsPerSec), 1)
			buf := make([]byte, sdspi.BlockSize)

			start := time.Now()
			for i := 0; i < rounds; i++ {
				if err := limiter.Wait(context.Background()); err != nil {
					return fmt.Errorf("sdspi-tool: rate limiter: %w", err)
				}

				if err := dev.Read(buf, lba); err != nil {
					return fmt.Errorf("sdspi-tool: read round %d: %w", i, err)
				}
			}
			elapsed := time.Since(start)

			fmt.Printf("%d reads in %s (%.1f reads/s)\n", rounds, elapsed, float64(rounds)/elapsed.Seconds())

			return nil
		},
	}

	cmd.Flags().Float64Var(&opsPerSec, "rate", 50, "maximum reads per second")
	cmd.Flags().IntVar(&rounds, "rounds", 100, "number of reads to perform")

	return cmd
}
