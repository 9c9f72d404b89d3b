package main

import (
	"fmt"

	"github.com/kusstas/sdmmc-spi/sdspi"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Initialize the card and print its classification and capacity",
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := openDevice()
			if err != nil {
				return err
			}

			bytesCap, blocksCap := dev.Capacity()
			blockSize, err := dev.Ioctl(sdspi.GetBlockSize)
			if err != nil {
				return err
			}

			fmt.Printf("card type:  %s\n", dev.CardType())
			fmt.Printf("capacity:   %d bytes (%d blocks)\n", bytesCap, blocksCap)
			fmt.Printf("block size: %d\n", blockSize)

			return nil
		},
	}
}
