// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// hacklace runs a Hacklace device on a host.
//
// With no flags it emulates the whole necklace in the terminal: the display
// is drawn with ANSI escapes, the enter key is the button (a plain enter is
// a short press, "hold" followed by enter is a long press) and messages live
// in a local file. On real hardware, -spi and -button select the MAX7219
// display and the push button, and -serial exposes the programming protocol
// on a serial port at the original 2400 baud.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/tarm/serial"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/ManuelHirsch/Hacklace"
	"github.com/ManuelHirsch/Hacklace/matrix"
	"github.com/ManuelHirsch/Hacklace/preview"
	"github.com/ManuelHirsch/Hacklace/store"
)

// fanout pushes every frame to all configured drivers.
type fanout []matrix.Driver

func (f fanout) Display(cols []byte) error {
	for _, d := range f {
		if err := d.Display(cols); err != nil {
			return err
		}
	}
	return nil
}

// stdinButton emulates the push button from standard input. Each line is one
// press: a plain enter is a short press, "hold" a long one. Wake-up edges
// are delivered through the EdgesChan of the fake pin.
type stdinButton struct {
	pin  *gpiotest.Pin
	hold time.Duration
}

func newStdinButton() *stdinButton {
	return &stdinButton{
		pin: &gpiotest.Pin{
			N:         "stdin",
			L:         gpio.High,
			EdgesChan: make(chan gpio.Level, 1),
		},
		hold: 1500 * time.Millisecond,
	}
}

func (b *stdinButton) press(d time.Duration) {
	select {
	case b.pin.EdgesChan <- gpio.Low:
	default:
	}
	b.pin.Lock()
	b.pin.L = gpio.Low
	b.pin.Unlock()
	time.Sleep(d)
	b.pin.Lock()
	b.pin.L = gpio.High
	b.pin.Unlock()
}

func (b *stdinButton) run() {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "hold" {
			b.press(b.hold)
		} else {
			b.press(60 * time.Millisecond)
		}
	}
}

func mainImpl() error {
	spiPort := flag.String("spi", "", "SPI port of a MAX7219 display (empty: ANSI terminal output)")
	btnPin := flag.String("button", "", "GPIO pin of the push button (empty: enter key on stdin)")
	serialPort := flag.String("serial", "", "serial port for the programming protocol")
	storePath := flag.String("store", "hacklace.eep", "message store file")
	httpAddr := flag.String("http", "", "listen address for the HTTP preview (e.g. :8080)")
	flag.Parse()
	if flag.NArg() != 0 {
		return fmt.Errorf("unexpected argument: %s", flag.Arg(0))
	}

	if _, err := host.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var drivers fanout
	if *spiPort != "" {
		p, err := spireg.Open(*spiPort)
		if err != nil {
			return err
		}
		defer p.Close()
		drv, err := matrix.NewSPI(p)
		if err != nil {
			return err
		}
		drivers = append(drivers, drv)
	} else {
		drivers = append(drivers, matrix.NewTerm(nil))
	}
	if *httpAddr != "" {
		sink := preview.New(nil)
		drivers = append(drivers, sink)
		go func() {
			log.Printf("preview on http://%s", *httpAddr)
			log.Print(http.ListenAndServe(*httpAddr, sink))
		}()
	}

	var pin gpio.PinIO
	if *btnPin != "" {
		pin = gpioreg.ByName(*btnPin)
		if pin == nil {
			return fmt.Errorf("unknown GPIO pin %q", *btnPin)
		}
	} else {
		btn := newStdinButton()
		go btn.run()
		pin = btn.pin
	}

	st, err := store.NewFile(*storePath, store.DefaultSize)
	if err != nil {
		return err
	}
	defer st.Close()

	dev, err := hacklace.New(st, drivers, pin, nil)
	if err != nil {
		return err
	}

	if *serialPort != "" {
		port, err := serial.OpenPort(&serial.Config{Name: *serialPort, Baud: 2400})
		if err != nil {
			return err
		}
		defer port.Close()
		go func() {
			if err := dev.Receiver().Run(port); err != nil {
				log.Printf("serial: %v", err)
			}
		}()
	}

	return dev.Run(ctx)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "hacklace: %v.\n", err)
		os.Exit(1)
	}
}
