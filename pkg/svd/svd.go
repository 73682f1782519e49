// Package svd decodes CMSIS-SVD device description files into a raw
// element tree. Only the subset of the schema needed for register
// inspection is modelled; semantic resolution (inheritance, array
// expansion, defaults) is left to the regmap package.
package svd

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Integer is an SVD scaled non-negative integer. The standard allows
// decimal, hexadecimal (0x...), C-style octal and binary (#... or 0b...)
// literals, so plain xml decoding into an uint64 is not enough.
type Integer uint64

func (i *Integer) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	v, err := ParseInteger(s)
	*i = Integer(v)
	return err
}

var ErrBadInteger = errors.New("malformed SVD integer")

// ParseInteger parses any of the SVD integer literal forms. The '#' binary
// form may contain 'x' ("do not care") digits, which read as zero.
func ParseInteger(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrBadInteger)
	}
	if s[0] == '#' {
		digits := strings.Map(func(r rune) rune {
			if r == 'x' || r == 'X' {
				return '0'
			}
			return r
		}, s[1:])
		v, err := strconv.ParseUint(digits, 2, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadInteger, s)
		}
		return v, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadInteger, s)
	}
	return v, nil
}

// Device is the root <device> element.
type Device struct {
	XMLName     xml.Name      `xml:"device"`
	Vendor      string        `xml:"vendor"`
	Name        string        `xml:"name"`
	Version     string        `xml:"version"`
	Description string        `xml:"description"`
	Width       *Integer      `xml:"width"`
	Size        *Integer      `xml:"size"`
	Access      string        `xml:"access"`
	ResetValue  *Integer      `xml:"resetValue"`
	Peripherals []*Peripheral `xml:"peripherals>peripheral"`
}

type Peripheral struct {
	DerivedFrom string      `xml:"derivedFrom,attr"`
	Name        string      `xml:"name"`
	Description string      `xml:"description"`
	GroupName   string      `xml:"groupName"`
	BaseAddress Integer     `xml:"baseAddress"`
	Size        *Integer    `xml:"size"`
	Access      string      `xml:"access"`
	ResetValue  *Integer    `xml:"resetValue"`
	Registers   []*Register `xml:"registers>register"`
}

type Register struct {
	Name          string   `xml:"name"`
	DisplayName   string   `xml:"displayName"`
	Description   string   `xml:"description"`
	AddressOffset Integer  `xml:"addressOffset"`
	Size          *Integer `xml:"size"`
	Access        string   `xml:"access"`
	ResetValue    *Integer `xml:"resetValue"`
	Dim           *Integer `xml:"dim"`
	DimIncrement  *Integer `xml:"dimIncrement"`
	DimIndex      string   `xml:"dimIndex"`
	Fields        []*Field `xml:"fields>field"`
}

// Field describes one bit range of a register. The standard admits three
// equivalent notations for the range; Range normalizes them.
type Field struct {
	Name        string   `xml:"name"`
	Description string   `xml:"description"`
	BitOffset   *Integer `xml:"bitOffset"`
	BitWidth    *Integer `xml:"bitWidth"`
	Lsb         *Integer `xml:"lsb"`
	Msb         *Integer `xml:"msb"`
	BitRange    string   `xml:"bitRange"`
	Access      string   `xml:"access"`
}

var ErrBadBitRange = errors.New("malformed field bit range")

// Range returns the field geometry as a (least significant bit, width)
// pair, whichever of the bitOffset+bitWidth, lsb+msb or "[msb:lsb]"
// notations the description used.
func (f *Field) Range() (lsb, width uint, err error) {
	switch {
	case f.BitOffset != nil:
		w := uint(1)
		if f.BitWidth != nil {
			w = uint(*f.BitWidth)
		}
		return uint(*f.BitOffset), w, nil

	case f.Lsb != nil && f.Msb != nil:
		low, high := uint(*f.Lsb), uint(*f.Msb)
		if high < low {
			return 0, 0, fmt.Errorf("%w: field %q has msb %d below lsb %d", ErrBadBitRange, f.Name, high, low)
		}
		return low, high - low + 1, nil

	case f.BitRange != "":
		return parseBitRange(f.Name, f.BitRange)
	}

	return 0, 0, fmt.Errorf("%w: field %q declares no bit range", ErrBadBitRange, f.Name)
}

func parseBitRange(name, s string) (lsb, width uint, err error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return 0, 0, fmt.Errorf("%w: field %q range %q", ErrBadBitRange, name, s)
	}
	high, low, ok := strings.Cut(trimmed[1:len(trimmed)-1], ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: field %q range %q", ErrBadBitRange, name, s)
	}
	msb, err := ParseInteger(high)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: field %q range %q", ErrBadBitRange, name, s)
	}
	l, err := ParseInteger(low)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: field %q range %q", ErrBadBitRange, name, s)
	}
	if msb < l {
		return 0, 0, fmt.Errorf("%w: field %q has msb %d below lsb %d", ErrBadBitRange, name, msb, l)
	}
	return uint(l), uint(msb - l + 1), nil
}
