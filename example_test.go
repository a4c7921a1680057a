// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hacklace_test

import (
	"context"
	"log"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	hacklace "github.com/ManuelHirsch/Hacklace"
	"github.com/ManuelHirsch/Hacklace/matrix"
	"github.com/ManuelHirsch/Hacklace/store"
)

// Runs a complete necklace on a Raspberry Pi: MAX7219 display on the first
// SPI bus, push button on GPIO4, messages in a local file.
func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	port, err := spireg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer port.Close()

	drv, err := matrix.NewSPI(port)
	if err != nil {
		log.Fatal(err)
	}

	pin := gpioreg.ByName("GPIO4")
	if pin == nil {
		log.Fatal("no GPIO4 pin")
	}

	st, err := store.NewFile("hacklace.eep", store.DefaultSize)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	dev, err := hacklace.New(st, drv, pin, nil)
	if err != nil {
		log.Fatal(err)
	}
	if err := dev.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
