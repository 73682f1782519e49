package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdronTech/svd-tools/pkg/regmap"
)

func TestDumpPeripherals(t *testing.T) {
	muteColors(t)
	device := testDevice()
	script := &consoleScript{
		replies: map[string]string{
			"monitor mdw phys 0x40020000": "0x40020000: a8000001 \n",
			"monitor mdw phys 0x40020010": "0x40020010: 00000000 \n",
		},
	}

	var out bytes.Buffer
	dumpPeripherals(&out, device, newTestSession(script), []*regmap.Peripheral{device.Peripherals[0]})

	assert.Contains(t, out.String(), "STM32F407 register dump")
	assert.Contains(t, out.String(), "GPIOA @0x40020000")
	assert.Contains(t, out.String(), "0xa8000001 (0xa8000000)")
	assert.Contains(t, out.String(), "write-only")
	assert.NotContains(t, out.String(), "USART1")
}

func TestRunDump_WholeDevice(t *testing.T) {
	muteColors(t)
	device := testDevice()
	script := &consoleScript{
		replies: map[string]string{
			"monitor mdw phys 0x40020000": "0x40020000: a8000000 \n",
			"monitor mdw phys 0x40020010": "0x40020010: 00000000 \n",
			"monitor mdw phys 0x40020414": "0x40020414: 00000000 \n",
			"monitor mdw phys 0x4001100c": "0x4001100c: 00002000 \n",
		},
	}
	path := filepath.Join(t.TempDir(), "regs.dump")

	var out bytes.Buffer
	ok := runDump(&out, device, newTestSession(script), []string{path})

	require.True(t, ok)
	assert.Contains(t, out.String(), "dumped 3 peripherals to "+path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "GPIOA @0x40020000")
	assert.Contains(t, string(content), "GPIOB @0x40020400")
	assert.Contains(t, string(content), "USART1 @0x40011000")
	assert.Contains(t, string(content), "UE[13:13]=0x1")
}

func TestRunDump_PeripheralPrefixTakesEveryMatch(t *testing.T) {
	muteColors(t)
	device := testDevice()
	script := &consoleScript{
		replies: map[string]string{
			"monitor mdw phys 0x40020000": "0x40020000: a8000000 \n",
			"monitor mdw phys 0x40020010": "0x40020010: 00000000 \n",
			"monitor mdw phys 0x40020414": "0x40020414: 00000000 \n",
		},
	}
	path := filepath.Join(t.TempDir(), "gpio.dump")

	var out bytes.Buffer
	ok := runDump(&out, device, newTestSession(script), []string{path, "gpio"})

	require.True(t, ok)
	assert.Contains(t, out.String(), "dumped 2 peripherals")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "GPIOA @0x40020000")
	assert.Contains(t, string(content), "GPIOB @0x40020400")
	assert.NotContains(t, string(content), "USART1")
}

func TestRunDump_NoMatch(t *testing.T) {
	muteColors(t)
	device := testDevice()
	script := &consoleScript{}
	path := filepath.Join(t.TempDir(), "never.dump")

	var out bytes.Buffer
	ok := runDump(&out, device, newTestSession(script), []string{path, "spi"})

	require.False(t, ok)
	assert.Contains(t, out.String(), "no peripheral matches 'spi'")
	assert.Empty(t, script.executed)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing matched, no file is written")
}

func TestRunDump_UnwritablePath(t *testing.T) {
	muteColors(t)
	device := testDevice()
	script := &consoleScript{}

	var out bytes.Buffer
	ok := runDump(&out, device, newTestSession(script), []string{filepath.Join(t.TempDir(), "no", "such", "dir", "x.dump")})

	require.False(t, ok)
	assert.Contains(t, out.String(), "cannot write dump")
}
