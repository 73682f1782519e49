package cmd

import (
	"io"
	"log/slog"
	"testing"

	"github.com/fatih/color"

	"github.com/AdronTech/svd-tools/pkg/regmap"
	"github.com/AdronTech/svd-tools/pkg/target"
)

// testDevice builds a device model with enough shape to exercise name
// resolution: two GPIO ports sharing a prefix and a lone USART.
func testDevice() *regmap.Device {
	gpioa := &regmap.Peripheral{
		Name:        "GPIOA",
		Description: "General purpose I/O port A",
		BaseAddress: 0x40020000,
	}
	gpioa.Registers = []*regmap.Register{
		{
			Name:        "MODER",
			Description: "Port mode register",
			Offset:      0x0,
			Size:        32,
			Access:      regmap.AccessReadWrite,
			ResetValue:  0xa8000000,
			Fields: []*regmap.Field{
				{Name: "MODER0", Description: "Pin 0 mode", BitOffset: 0, BitWidth: 2},
				{Name: "MODER1", Description: "Pin 1 mode", BitOffset: 2, BitWidth: 2},
				{Name: "MODER15", Description: "Pin 15 mode", BitOffset: 30, BitWidth: 2},
			},
			Peripheral: gpioa,
		},
		{
			Name:        "IDR",
			Description: "Input data register",
			Offset:      0x10,
			Size:        32,
			Access:      regmap.AccessReadOnly,
			Peripheral:  gpioa,
		},
		{
			Name:        "BSRR",
			Description: "Bit set/reset register",
			Offset:      0x18,
			Size:        32,
			Access:      regmap.AccessWriteOnly,
			Peripheral:  gpioa,
		},
	}

	gpiob := &regmap.Peripheral{
		Name:        "GPIOB",
		Description: "General purpose I/O port B",
		BaseAddress: 0x40020400,
	}
	gpiob.Registers = []*regmap.Register{
		{
			Name:        "ODR",
			Description: "Output data register",
			Offset:      0x14,
			Size:        32,
			Access:      regmap.AccessReadWrite,
			Peripheral:  gpiob,
		},
	}

	usart1 := &regmap.Peripheral{
		Name:        "USART1",
		Description: "Universal synchronous asynchronous receiver transmitter",
		BaseAddress: 0x40011000,
	}
	usart1.Registers = []*regmap.Register{
		{
			Name:        "CR1",
			Description: "Control register 1",
			Offset:      0xc,
			Size:        32,
			Access:      regmap.AccessReadWrite,
			Fields: []*regmap.Field{
				{Name: "UE", Description: "USART enable", BitOffset: 13, BitWidth: 1},
			},
			Peripheral: usart1,
		},
	}

	return &regmap.Device{
		Name:        "STM32F407",
		Description: "ARM Cortex-M4 based MCU",
		Width:       32,
		Peripherals: []*regmap.Peripheral{gpioa, gpiob, usart1},
	}
}

// consoleScript is a CommandRunner replying from a canned map and
// recording every command it was asked to run.
type consoleScript struct {
	replies  map[string]string
	executed []string
}

func (s *consoleScript) Execute(command string) (string, error) {
	s.executed = append(s.executed, command)

	return s.replies[command], nil
}

func newTestSession(script *consoleScript) *target.Session {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return target.NewSession(target.NewTransport(script, target.FlavorOpenOCD.Dialect(), log))
}

func muteColors(t *testing.T) {
	previous := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = previous })
}

func forceColors(t *testing.T) {
	previous := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = previous })
}
