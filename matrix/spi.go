// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package matrix

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/ManuelHirsch/Hacklace/font"
)

const (
	_REGISTER_NOOP         byte = 0x0
	_REGISTER_DECODE_MODE  byte = 0x9
	_REGISTER_INTENSITY    byte = 0xa
	_REGISTER_SCAN_LIMIT   byte = 0xb
	_REGISTER_SHUTDOWN     byte = 0xc
	_REGISTER_DISPLAY_TEST byte = 0xf
)

// SPI drives a single MAX7219/MAX7221 LED matrix unit as the display output.
// The matrix frame is column-major while the 7219 data registers hold rows,
// so Display transposes on the way out. Columns are mapped from the left of
// the unit; unused rows and columns of an 8x8 unit stay dark.
type SPI struct {
	conn spi.Conn
}

// NewSPI returns a matrix driver for a MAX7219 on the specified spi.Port,
// initialized for raw (non-decoded) row data at medium intensity.
func NewSPI(p spi.Port) (*SPI, error) {
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("matrix: %v", err)
	}
	d := &SPI{conn: c}
	var initCommands = [][]byte{
		{_REGISTER_DISPLAY_TEST, 0x0},
		{_REGISTER_SHUTDOWN, 0x00},
		{_REGISTER_DECODE_MODE, 0x00},
		{_REGISTER_INTENSITY, 0x08},
		{_REGISTER_SCAN_LIMIT, 0x07},
		{_REGISTER_SHUTDOWN, 0x01}}
	for _, cmd := range initCommands {
		if err := d.sendCommand(cmd[0], cmd[1]); err != nil {
			return nil, err
		}
	}
	if err := d.Display(make([]byte, DefaultWidth)); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *SPI) String() string {
	return "matrix.SPI"
}

// sendCommand writes to a data or command register.
func (d *SPI) sendCommand(register, data byte) error {
	return d.conn.Tx([]byte{register, data}, nil)
}

// Display implements Driver.
func (d *SPI) Display(cols []byte) error {
	for row := 0; row < 8; row++ {
		var v byte
		if row < font.Rows {
			for ix, c := range cols {
				if ix >= 8 {
					break
				}
				if c&(1<<uint(row)) != 0 {
					v |= 0x80 >> uint(ix)
				}
			}
		}
		if err := d.sendCommand(byte(row+1), v); err != nil {
			return err
		}
	}
	return nil
}

// SetIntensity controls the brightness of the display. The allowed range for
// intensity is from 0-15.
func (d *SPI) SetIntensity(intensity byte) error {
	return d.sendCommand(_REGISTER_INTENSITY, intensity&0x0f)
}

// Halt puts the 7219 into shutdown mode, blanking the LEDs.
func (d *SPI) Halt() error {
	return d.sendCommand(_REGISTER_SHUTDOWN, 0x00)
}

var _ Driver = &SPI{}
