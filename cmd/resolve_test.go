package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePeripheral_UniquePrefix(t *testing.T) {
	muteColors(t)
	device := testDevice()

	var out bytes.Buffer
	peripheral, found := resolvePeripheral(&out, device, "usa")

	require.True(t, found)
	assert.Equal(t, "USART1", peripheral.Name)
	assert.Contains(t, out.String(), "found peripheral 'USART1'")
}

func TestResolvePeripheral_ExactMatchIsSilent(t *testing.T) {
	muteColors(t)
	device := testDevice()

	var out bytes.Buffer
	peripheral, found := resolvePeripheral(&out, device, "gpioa")

	require.True(t, found)
	assert.Equal(t, "GPIOA", peripheral.Name)
	assert.Empty(t, out.String())
}

func TestResolvePeripheral_Ambiguous(t *testing.T) {
	muteColors(t)
	device := testDevice()

	var out bytes.Buffer
	_, found := resolvePeripheral(&out, device, "GPIO")

	require.False(t, found)
	assert.Contains(t, out.String(), "several peripherals match 'GPIO'")
	assert.Contains(t, out.String(), "GPIOA")
	assert.Contains(t, out.String(), "GPIOB")
	assert.NotContains(t, out.String(), "USART1")
}

func TestResolvePeripheral_NoneListsAll(t *testing.T) {
	muteColors(t)
	device := testDevice()

	var out bytes.Buffer
	_, found := resolvePeripheral(&out, device, "SPI")

	require.False(t, found)
	assert.Contains(t, out.String(), "no peripheral matches 'SPI'")
	assert.Contains(t, out.String(), "USART1")
}

func TestResolveRegister(t *testing.T) {
	muteColors(t)
	device := testDevice()
	gpioa := device.Peripherals[0]

	var out bytes.Buffer
	register, found := resolveRegister(&out, gpioa, "mod")

	require.True(t, found)
	assert.Equal(t, "MODER", register.Name)
	assert.Contains(t, out.String(), "found register 'GPIOA:MODER'")

	out.Reset()
	_, found = resolveRegister(&out, gpioa, "CR")
	require.False(t, found)
	assert.Contains(t, out.String(), "no register of GPIOA matches 'CR'")
}

func TestResolveField(t *testing.T) {
	muteColors(t)
	device := testDevice()
	moder := device.Peripherals[0].Registers[0]

	var out bytes.Buffer
	field, found := resolveField(&out, moder, "moder1")

	require.True(t, found, "exact name wins over the MODER15 prefix match")
	assert.Equal(t, "MODER1", field.Name)
	assert.Empty(t, out.String())

	out.Reset()
	_, found = resolveField(&out, moder, "MODER")
	require.False(t, found)
	assert.Contains(t, out.String(), "several fields of GPIOA:MODER match 'MODER'")
}

const resolveTestDescription = `<?xml version="1.0" encoding="utf-8"?>
<device>
  <name>STM32F407</name>
  <width>32</width>
  <peripherals>
    <peripheral>
      <name>GPIOA</name>
      <baseAddress>0x40020000</baseAddress>
      <registers>
        <register>
          <name>MODER</name>
          <addressOffset>0x0</addressOffset>
          <resetValue>0xA8000000</resetValue>
        </register>
      </registers>
    </peripheral>
  </peripherals>
</device>
`

func configureDescription(t *testing.T, document string) {
	path := filepath.Join(t.TempDir(), "device.svd")
	require.NoError(t, os.WriteFile(path, []byte(document), 0o644))

	previous := viper.GetString("svd")
	viper.Set("svd", path)
	t.Cleanup(func() { viper.Set("svd", previous) })
}

func TestLoadDevice(t *testing.T) {
	configureDescription(t, resolveTestDescription)

	device, err := loadDevice()

	require.NoError(t, err)
	assert.Equal(t, "STM32F407", device.Name)
	require.Len(t, device.Peripherals, 1)
	assert.Equal(t, uint64(0x40020000), device.Peripherals[0].BaseAddress)
}

func TestLoadDevice_NoDescriptionConfigured(t *testing.T) {
	previous := viper.GetString("svd")
	viper.Set("svd", "")
	t.Cleanup(func() { viper.Set("svd", previous) })

	_, err := loadDevice()

	assert.ErrorIs(t, err, errNoDescription)
}

func TestLoadDevice_MissingFile(t *testing.T) {
	previous := viper.GetString("svd")
	viper.Set("svd", filepath.Join(t.TempDir(), "nope.svd"))
	t.Cleanup(func() { viper.Set("svd", previous) })

	_, err := loadDevice()

	assert.Error(t, err)
}
