package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	for literal, expected := range map[string]uint64{
		"0xA8000000": 0xa8000000,
		"0X1F":       0x1f,
		"a8":         0xa8,
		"0":          0x0,
		"DEADBEEF":   0xdeadbeef,
	} {
		value, err := parseValue(literal)
		require.NoError(t, err, literal)
		assert.Equal(t, expected, value, literal)
	}
}

func TestParseValue_Malformed(t *testing.T) {
	for _, literal := range []string{"", "0x", "xyz", "0x12g4", "-1"} {
		_, err := parseValue(literal)
		assert.Error(t, err, literal)
	}
}

func TestRunSet_Register(t *testing.T) {
	muteColors(t)
	device := testDevice()
	script := &consoleScript{
		replies: map[string]string{
			"monitor mdw phys 0x40020000": "0x40020000: 00000001 \n",
		},
	}

	var out bytes.Buffer
	ok := runSet(&out, device, newTestSession(script), []string{"gpioa", "moder", "0x1"})

	require.True(t, ok)
	assert.Equal(t, []string{
		"monitor mww phys 0x40020000 0x1",
		"monitor mdw phys 0x40020000",
	}, script.executed, "the register is read back after the write")

	assert.Contains(t, out.String(), "GPIOA:MODER <- 0x1")
	assert.Contains(t, out.String(), "0x1 (0xa8000000)")
}

func TestRunSet_Field(t *testing.T) {
	muteColors(t)
	device := testDevice()
	script := &consoleScript{
		replies: map[string]string{
			"monitor mdw phys 0x40020000": "0x40020000: a8000000 \n",
		},
	}

	var out bytes.Buffer
	ok := runSet(&out, device, newTestSession(script), []string{"gpioa", "moder", "moder1", "2"})

	require.True(t, ok)
	assert.Equal(t, []string{
		"monitor mdw phys 0x40020000",
		"monitor mww phys 0x40020000 0xa8000008",
		"monitor mdw phys 0x40020000",
	}, script.executed, "read, merge 0x2 into bits 3:2, write, read back")

	assert.Contains(t, out.String(), "GPIOA:MODER MODER1 <- 0x2")
}

func TestRunSet_NotWritable(t *testing.T) {
	muteColors(t)
	device := testDevice()
	script := &consoleScript{}

	var out bytes.Buffer
	ok := runSet(&out, device, newTestSession(script), []string{"gpioa", "idr", "1"})

	require.False(t, ok)
	assert.Empty(t, script.executed, "rejected writes never touch the target")
	assert.Contains(t, out.String(), "cannot write GPIOA:IDR")
}

func TestRunSet_FieldValueTooWide(t *testing.T) {
	muteColors(t)
	device := testDevice()
	script := &consoleScript{}

	var out bytes.Buffer
	ok := runSet(&out, device, newTestSession(script), []string{"gpioa", "moder", "moder1", "4"})

	require.False(t, ok)
	assert.Empty(t, script.executed)
	assert.Contains(t, out.String(), "cannot write GPIOA:MODER MODER1")
}

func TestRunSet_BadValue(t *testing.T) {
	muteColors(t)
	device := testDevice()
	script := &consoleScript{}

	var out bytes.Buffer
	ok := runSet(&out, device, newTestSession(script), []string{"gpioa", "moder", "pony"})

	require.False(t, ok)
	assert.Empty(t, script.executed)
	assert.Contains(t, out.String(), "'pony' is not a hexadecimal value")
}

func TestRunSet_AmbiguousField(t *testing.T) {
	muteColors(t)
	device := testDevice()
	script := &consoleScript{}

	var out bytes.Buffer
	ok := runSet(&out, device, newTestSession(script), []string{"gpioa", "moder", "MODER", "1"})

	require.False(t, ok)
	assert.Empty(t, script.executed)
	assert.Contains(t, out.String(), "several fields of GPIOA:MODER match 'MODER'")
}
