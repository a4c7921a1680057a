// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package preview renders the matrix state as a PNG stream over HTTP.
//
// Sink is a matrix display driver and an http.Handler at the same time: every
// frame pushed to it is drawn as a grid of LED dots and streamed to connected
// browsers as "MJPEG" (multipart/x-mixed-replace), the protocol IP cameras
// use. Clients get a snapshot right away and an update on every change.
//
// The use case is developing message sets on a host without the hardware.
package preview

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"image/color"
	"io"
	"mime"
	"net/http"
	"net/textproto"
	"strconv"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/ManuelHirsch/Hacklace/font"
	"github.com/ManuelHirsch/Hacklace/matrix"
)

// Opts configures the rendering.
type Opts struct {
	// Width is the number of LED columns. Defaults to matrix.DefaultWidth.
	Width int

	// Scale is the dot pitch in pixels. Defaults to 24.
	Scale int

	// Caption is drawn under the dots. Defaults to "Hacklace".
	Caption string

	// On and Off are the LED colors. Default to red on near-black.
	On, Off color.Color
}

// Sink renders frames pushed by the display into PNG images and streams them
// to HTTP clients.
type Sink struct {
	width   int
	scale   int
	caption string
	on, off color.Color

	mu      sync.Mutex
	cols    []byte
	encoded []byte
	clients map[chan struct{}]struct{}
}

var _ matrix.Driver = (*Sink)(nil)
var _ http.Handler = (*Sink)(nil)

// New returns a Sink showing an all-off matrix.
func New(opts *Opts) *Sink {
	if opts == nil {
		opts = &Opts{}
	}
	s := &Sink{
		width:   opts.Width,
		scale:   opts.Scale,
		caption: opts.Caption,
		on:      opts.On,
		off:     opts.Off,
		clients: map[chan struct{}]struct{}{},
	}
	if s.width <= 0 {
		s.width = matrix.DefaultWidth
	}
	if s.scale <= 0 {
		s.scale = 24
	}
	if s.caption == "" {
		s.caption = "Hacklace"
	}
	if s.on == nil {
		s.on = color.RGBA{R: 0xE0, G: 0x20, B: 0x20, A: 0xFF}
	}
	if s.off == nil {
		s.off = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
	}
	s.cols = make([]byte, s.width)
	return s
}

func (s *Sink) String() string {
	return "preview"
}

// Display implements matrix.Driver. It keeps the frame, drops the cached
// encoding and pokes every connected client.
func (s *Sink) Display(cols []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols = append(s.cols[:0], cols...)
	s.encoded = nil
	for c := range s.clients {
		select {
		case c <- struct{}{}:
		default:
		}
	}
	return nil
}

// Halt implements conn.Resource; it disconnects all clients.
func (s *Sink) Halt() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		close(c)
	}
	s.clients = map[chan struct{}]struct{}{}
	return nil
}

// render draws the current frame. Callers hold s.mu.
func (s *Sink) render() ([]byte, error) {
	pitch := float64(s.scale)
	w := float64(s.width) * pitch
	h := float64(font.Rows)*pitch + pitch // one pitch of room for the caption

	dc := gg.NewContext(int(w), int(h))
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	r := pitch * 0.42
	for x := 0; x < s.width && x < len(s.cols); x++ {
		for y := 0; y < font.Rows; y++ {
			if s.cols[x]&(1<<uint(y)) != 0 {
				dc.SetColor(s.on)
			} else {
				dc.SetColor(s.off)
			}
			dc.DrawCircle((float64(x)+0.5)*pitch, (float64(y)+0.5)*pitch, r)
			dc.Fill()
		}
	}

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(0.6, 0.6, 0.6)
	dc.DrawStringAnchored(s.caption, w/2, h-pitch/2, 0.5, 0.3)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// snapshot returns the PNG of the current frame, encoding it only when the
// frame changed since the last call.
func (s *Sink) snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.encoded == nil {
		var err error
		if s.encoded, err = s.render(); err != nil {
			return nil, err
		}
	}
	return s.encoded, nil
}

// randomBoundary generates a MIME multipart boundary compatible with RFC 2046
// (section 5.1.1).
func randomBoundary() string {
	var buf [30]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", buf[:])
}

// writePart sends one multipart frame and its trailing boundary line, so the
// client can render it without waiting for the next part.
//
// "mime/multipart".Writer is not suitable for a neverending stream of parts
// where each must be flushed with the part-ending boundary line.
func writePart(w io.Writer, boundary string, body []byte) error {
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Type", "image/png")
	hdr.Set("Content-Length", strconv.Itoa(len(body)))

	var buf bytes.Buffer
	for name := range hdr {
		for _, value := range hdr[name] {
			fmt.Fprintf(&buf, "%s: %s\r\n", name, value)
		}
	}
	buf.WriteString("\r\n")
	buf.Write(body)
	fmt.Fprintf(&buf, "\r\n--%s\r\n", boundary)
	_, err := buf.WriteTo(w)
	return err
}

// ServeHTTP streams the display as multipart/x-mixed-replace PNG frames
// until the client goes away or the sink is halted.
func (s *Sink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	boundary := randomBoundary()
	w.Header().Set("Content-Type",
		mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{
			"boundary": boundary,
		}))
	if _, err := fmt.Fprintf(w, "--%s\r\n", boundary); err != nil {
		return
	}

	refresh := make(chan struct{}, 1)
	s.mu.Lock()
	s.clients[refresh] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, refresh)
		s.mu.Unlock()
	}()

	for {
		body, err := s.snapshot()
		if err != nil {
			// No way to deliver an error inside an image stream.
			return
		}
		if err := writePart(w, boundary, body); err != nil {
			return
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		select {
		case _, ok := <-refresh:
			if !ok {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
