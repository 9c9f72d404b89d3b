// https://github.com/kusstas/sdmmc-spi
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package sdspi implements a block-device driver for SD/MMC memory cards
// attached over a synchronous SPI bus.
//
// It brings a card from power-on into SPI mode, classifies it (SD1, SD2 or
// SDHC), reads its Card Specific Data register to learn capacity, and then
// services single- and multi-block reads and writes with CRC verification
// and busy-handshake flow control.
//
// The driver is single-threaded cooperative: there are no background
// goroutines and every wait is a bounded busy-poll loop. It takes exclusive
// ownership of the SPI connection and chip-select pin handed to New for its
// entire lifetime; concurrent use from multiple goroutines is a caller
// error, not something this package guards against.
//
// Its implementation adopts, where indicated, the following reference
// specification:
//   - SD-PL-7.10 - SD Specifications Part 1 Physical Layer Simplified Specification - 7.10 2020/03/25
package sdspi
