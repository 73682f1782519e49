package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/AdronTech/svd-tools/pkg/bitfield"
	"github.com/AdronTech/svd-tools/pkg/regmap"
	"github.com/AdronTech/svd-tools/pkg/target"
	"github.com/AdronTech/svd-tools/pkg/utils"
)

const fallbackTerminalWidth = 100

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTerminalWidth
	}

	return width
}

// descriptionColumnWidth bounds the widest table column so description
// text wraps instead of pushing the table off the terminal.
func descriptionColumnWidth() int {
	width := terminalWidth() / 2
	if width < 30 {
		return 30
	}
	if width > 100 {
		return 100
	}

	return width
}

func newTable(out io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetAutoWrapText(true)
	table.SetColWidth(descriptionColumnWidth())
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

	return table
}

func renderTitle(out io.Writer, colored bool, format string, args ...any) {
	if colored {
		colorHeader.Fprintf(out, format+"\n", args...)
		return
	}

	fmt.Fprintf(out, format+"\n", args...)
}

// highlightMatch paints the part of name that matched the query prefix.
func highlightMatch(name, prefix string, colored bool) string {
	if !colored || prefix == "" || len(prefix) > len(name) || !strings.EqualFold(name[:len(prefix)], prefix) {
		return name
	}

	return colorHighlight.Sprint(name[:len(prefix)]) + name[len(prefix):]
}

func renderPeripherals(out io.Writer, peripherals []*regmap.Peripheral, prefix string, colored bool) {
	table := newTable(out)
	table.SetHeader([]string{"peripheral", "address", "description"})

	for _, peripheral := range peripherals {
		table.Append([]string{
			highlightMatch(peripheral.Name, prefix, colored),
			utils.FormatUintHex(peripheral.BaseAddress, 32),
			peripheral.Description,
		})
	}

	table.Render()
}

func renderRegisters(out io.Writer, registers []*regmap.Register, prefix string, colored bool) {
	table := newTable(out)
	table.SetHeader([]string{"register", "address", "access", "description"})

	for _, register := range registers {
		table.Append([]string{
			highlightMatch(register.Name, prefix, colored),
			utils.FormatUintHex(register.Address(), 32),
			register.Access.Label(),
			register.Description,
		})
	}

	table.Render()
}

// fieldMode is the access mode that effectively governs a field: its own
// when declared, the enclosing register's otherwise.
func fieldMode(register *regmap.Register, field *regmap.Field) regmap.Access {
	if field.Access != regmap.AccessUnspecified {
		return field.Access
	}

	return register.Access
}

func renderFields(out io.Writer, register *regmap.Register, fields []*regmap.Field, prefix string, colored bool) {
	table := newTable(out)
	table.SetHeader([]string{"field", "access", "reset", "description"})

	for _, field := range fields {
		table.Append([]string{
			highlightMatch(bitfield.Label(field.Name, field.BitOffset, field.BitWidth), prefix, colored),
			fieldMode(register, field).Label(),
			fmt.Sprintf("%#x", bitfield.Extract(register.ResetValue, field.BitOffset, field.BitWidth)),
			field.Description,
		})
	}

	table.Render()
}

func formatReadingValue(reading target.Reading, colored bool) string {
	switch {
	case reading.Err != nil:
		if colored {
			return colorError.Sprint(reading.Err.Error())
		}
		return reading.Err.Error()

	case !reading.HasValue:
		return reading.Register.Access.Label()
	}

	value := fmt.Sprintf("%#x (%#x)", reading.Value, reading.Register.ResetValue)
	if colored && reading.Changed() {
		return colorChanged.Sprint(value)
	}

	return value
}

func formatReadingFields(reading target.Reading, colored bool) string {
	pieces := utils.Map(reading.Fields, func(value target.FieldValue) string {
		piece := fmt.Sprintf("%v=%#x", value.Label(), value.Value)
		if colored && value.Changed() {
			return colorChanged.Sprint(piece)
		}
		return piece
	})

	return utils.FormatSlice(pieces, " ")
}

// renderReadings prints one row per register read: current value next to
// the reset value, and every field unpacked. Unreadable registers show
// their access mode in the value cell, failed reads show the error.
func renderReadings(out io.Writer, readings []target.Reading, colored bool) {
	table := newTable(out)
	table.SetHeader([]string{"register", "address", "value (reset)", "fields"})

	for _, reading := range readings {
		table.Append([]string{
			reading.Register.Name,
			utils.FormatUintHex(reading.Register.Address(), 32),
			formatReadingValue(reading, colored),
			formatReadingFields(reading, colored),
		})
	}

	table.Render()
}

// renderRegisterDetail prints the static description of one register: its
// properties, the bit layout diagram and the field table.
func renderRegisterDetail(out io.Writer, register *regmap.Register, colored bool) {
	renderTitle(out, colored, "%v:%v @%v", register.Peripheral.Name, register.Name, utils.FormatUintHex(register.Address(), 32))
	fmt.Fprintf(out, "access: %v  size: %v bits  reset: %#x\n", register.Access.Label(), register.Size, register.ResetValue)
	if register.Description != "" {
		fmt.Fprintln(out, register.Description)
	}
	fmt.Fprintln(out)

	if len(register.Fields) == 0 {
		if colored {
			colorDim.Fprintln(out, "no fields defined")
		} else {
			fmt.Fprintln(out, "no fields defined")
		}
		return
	}

	frameFields := utils.Map(register.Fields, func(field *regmap.Field) utils.AsciiFrameField {
		return utils.AsciiFrameField{
			Name:  field.Name,
			Begin: int(field.BitOffset),
			Width: int(field.BitWidth),
		}
	})

	diagram, err := utils.AsciiFrame(frameFields, int(register.Size), "bits", utils.AsciiFrameUnitLayout_RightToLeft, 2)
	if err == nil {
		fmt.Fprintln(out, diagram)
	} else {
		slog.Debug("register bit layout not drawable", "register", register.Name, "err", err)
	}

	renderFields(out, register, register.Fields, "", colored)
}
