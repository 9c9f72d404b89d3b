package main

import (
	"fmt"

	"github.com/kusstas/sdmmc-spi/sdspi"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// openDevice wires a real periph SPI port and chip-select pin into a
// sdspi.Device and runs Initialize, ready for I/O.
func openDevice() (*sdspi.Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("sdspi-tool: host init: %w", err)
	}

	port, err := spireg.Open(flagSPIPort)
	if err != nil {
		return nil, fmt.Errorf("sdspi-tool: open SPI port %q: %w", flagSPIPort, err)
	}

	conn, err := port.Connect(25*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("sdspi-tool: connect SPI: %w", err)
	}

	cs := gpioreg.ByName(flagCSPin)
	if cs == nil {
		return nil, fmt.Errorf("sdspi-tool: chip-select pin %q not found", flagCSPin)
	}

	dev := sdspi.New(conn, cs, sdspi.Config{}).WithLogger(newToolLogger())

	if err := dev.Initialize(); err != nil {
		return nil, fmt.Errorf("sdspi-tool: initialize: %w", err)
	}

	return dev, nil
}
