// https://github.com/kusstas/sdmmc-spi
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Command sdspi-tool drives an SD/MMC card over SPI from the command line:
// bring-up and classification, raw sector read/write, written-sector
// verification, and throttled I/O benchmarking.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
