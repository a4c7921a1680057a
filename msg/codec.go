// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package msg implements the Hacklace message codec and player.
//
// A stored message is one mode byte followed by an escaped byte stream and a
// zero terminator. Body units are literal characters (>= 0x20), '^' escapes
// for character codes at and above 0x80 ('^x' decodes to x+63, '^^' to a
// literal '^'), '~' references to built-in animations ('~A'.., '~~' for a
// literal '~'), and 0xFF-delimited direct-mode runs of raw column bytes.
package msg

import (
	"fmt"

	"github.com/ManuelHirsch/Hacklace/anim"
)

// Marker bytes of the body grammar.
const (
	EscapeMark byte = '^'
	AnimMark   byte = '~'
	DirectMark byte = 0xFF
	Terminator byte = 0x00

	// escapeShift is added to the byte following '^' when decoding.
	escapeShift byte = 63
)

// UnitKind discriminates the decoded display units of a message body.
type UnitKind uint8

const (
	// UnitChar renders one glyph via the font.
	UnitChar UnitKind = iota
	// UnitAnim substitutes a built-in animation image.
	UnitAnim
	// UnitDirect writes raw column bytes to the display buffer.
	UnitDirect
)

// Unit is one decoded display unit.
type Unit struct {
	Kind UnitKind
	Char byte   // character code for UnitChar
	Anim int    // animation index for UnitAnim, 0 for '~A'
	Raw  []byte // column bytes for UnitDirect
}

// Char returns a character unit.
func Char(c byte) Unit { return Unit{Kind: UnitChar, Char: c} }

// Anim returns an animation reference unit.
func Anim(i int) Unit { return Unit{Kind: UnitAnim, Anim: i} }

// Direct returns a direct-mode unit with the given raw columns.
func Direct(raw ...byte) Unit { return Unit{Kind: UnitDirect, Raw: raw} }

// Encode produces the stored body form of units, without mode byte or
// terminator.
func Encode(units []Unit) ([]byte, error) {
	var out []byte
	for _, u := range units {
		switch u.Kind {
		case UnitChar:
			b, err := encodeChar(u.Char)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		case UnitAnim:
			if u.Anim < 0 || u.Anim >= anim.Count() {
				return nil, fmt.Errorf("msg: animation index %d out of range", u.Anim)
			}
			out = append(out, AnimMark, 'A'+byte(u.Anim))
		case UnitDirect:
			for _, b := range u.Raw {
				if b == DirectMark {
					return nil, fmt.Errorf("msg: direct-mode run cannot contain 0x%02x", DirectMark)
				}
			}
			out = append(out, DirectMark)
			out = append(out, u.Raw...)
			out = append(out, DirectMark)
		default:
			return nil, fmt.Errorf("msg: unknown unit kind %d", u.Kind)
		}
	}
	return out, nil
}

func encodeChar(c byte) ([]byte, error) {
	switch {
	case c == EscapeMark:
		return []byte{EscapeMark, EscapeMark}, nil
	case c == AnimMark:
		return []byte{AnimMark, AnimMark}, nil
	case c >= 0x20 && c < 0x80:
		return []byte{c}, nil
	case c >= 0x80:
		e := c - escapeShift
		if e == EscapeMark {
			// '^' + 63 collides with the self-escape and cannot be stored.
			return nil, fmt.Errorf("msg: character 0x%02x has no escaped form", c)
		}
		return []byte{EscapeMark, e}, nil
	default:
		return nil, fmt.Errorf("msg: character 0x%02x below 0x20 is not encodable", c)
	}
}

// EncodeMessage produces a full stored record: mode byte, body, terminator.
func EncodeMessage(m Mode, units []Unit) ([]byte, error) {
	body, err := Encode(units)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+2)
	out = append(out, m.Byte())
	out = append(out, body...)
	out = append(out, Terminator)
	return out, nil
}
