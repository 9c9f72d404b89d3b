package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/kusstas/sdmmc-spi/sdspi"
	"github.com/spf13/cobra"
)

func newReadCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "read <lba> <blocks>",
		Short: "Read contiguous blocks starting at lba to a file (or stdout)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lba, blocks, err := parseLBAAndBlocks(args)
			if err != nil {
				return err
			}

			dev, err := openDevice()
			if err != nil {
				return err
			}

			buf := make([]byte, blocks*sdspi.BlockSize)
			if err := dev.Read(buf, lba); err != nil {
				return fmt.Errorf("sdspi-tool: read: %w", err)
			}

			return writeOutput(outPath, buf)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newWriteCmd() *cobra.Command {
	var inPath string

	cmd := &cobra.Command{
		Use:   "write <lba> <blocks>",
		Short: "Write contiguous blocks starting at lba from a file (or stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lba, blocks, err := parseLBAAndBlocks(args)
			if err != nil {
				return err
			}

			buf, err := readInput(inPath, blocks*sdspi.BlockSize)
			if err != nil {
				return err
			}

			dev, err := openDevice()
			if err != nil {
				return err
			}

			if err := dev.Write(buf, lba); err != nil {
				return fmt.Errorf("sdspi-tool: write: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&inPath, "in", "i", "", "input file (default stdin)")
	return cmd
}

func parseLBAAndBlocks(args []string) (lba uint32, blocks int, err error) {
	lba64, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("sdspi-tool: invalid lba %q: %w", args[0], err)
	}

	blocks, err = strconv.Atoi(args[1])
	if err != nil || blocks <= 0 {
		return 0, 0, fmt.Errorf("sdspi-tool: invalid block count %q", args[1])
	}

	return uint32(lba64), blocks, nil
}

func readInput(path string, size int) ([]byte, error) {
	f := os.Stdin
	if path != "" {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("sdspi-tool: open %q: %w", path, err)
		}
		defer f.Close()
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, fmt.Errorf("sdspi-tool: read input: %w", err)
	}

	return buf, nil
}

func writeOutput(path string, buf []byte) error {
	f := os.Stdout
	if path != "" {
		var err error
		f, err = os.Create(path)
		if err != nil {
			return fmt.Errorf("sdspi-tool: create %q: %w", path, err)
		}
		defer f.Close()
	}

	_, err := f.Write(buf)
	return err
}
