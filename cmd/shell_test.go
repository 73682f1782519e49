package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchShellLine_Quit(t *testing.T) {
	muteColors(t)
	device := testDevice()

	var out bytes.Buffer
	assert.True(t, dispatchShellLine(&out, device, nil, shellCommands(), "quit"))
	assert.True(t, dispatchShellLine(&out, device, nil, shellCommands(), "exit"))
	assert.False(t, dispatchShellLine(&out, device, nil, shellCommands(), ""))
}

func TestDispatchShellLine_Help(t *testing.T) {
	muteColors(t)
	device := testDevice()

	var out bytes.Buffer
	quit := dispatchShellLine(&out, device, nil, shellCommands(), "help")

	require.False(t, quit)
	assert.Contains(t, out.String(), "get <peripheral> [register]")
	assert.Contains(t, out.String(), "set <peripheral> <register> [field] <value>")
	assert.Contains(t, out.String(), "leave the shell")
}

func TestDispatchShellLine_Unknown(t *testing.T) {
	muteColors(t)
	device := testDevice()

	var out bytes.Buffer
	quit := dispatchShellLine(&out, device, nil, shellCommands(), "frobnicate everything")

	require.False(t, quit)
	assert.Contains(t, out.String(), "unknown command 'frobnicate'")
}

func TestDispatchShellLine_Usage(t *testing.T) {
	muteColors(t)
	device := testDevice()

	var out bytes.Buffer
	quit := dispatchShellLine(&out, device, nil, shellCommands(), "set gpioa")

	require.False(t, quit)
	assert.Contains(t, out.String(), "usage: set <peripheral> <register> [field] <value>")
}

func TestDispatchShellLine_NeedsTarget(t *testing.T) {
	muteColors(t)
	device := testDevice()

	var out bytes.Buffer
	quit := dispatchShellLine(&out, device, nil, shellCommands(), "get gpioa")

	require.False(t, quit)
	assert.Contains(t, out.String(), "get needs a target connection")
}

func TestDispatchShellLine_InfoWorksWithoutTarget(t *testing.T) {
	muteColors(t)
	device := testDevice()

	var out bytes.Buffer
	quit := dispatchShellLine(&out, device, nil, shellCommands(), "info gpioa moder")

	require.False(t, quit)
	assert.Contains(t, out.String(), "GPIOA:MODER @0x40020000")
}

func TestDispatchShellLine_RunsGet(t *testing.T) {
	muteColors(t)
	device := testDevice()
	script := &consoleScript{
		replies: map[string]string{
			"monitor mdw phys 0x40020000": "0x40020000: a8000000 \n",
		},
	}

	var out bytes.Buffer
	quit := dispatchShellLine(&out, device, newTestSession(script), shellCommands(), "GET gpioa moder")

	require.False(t, quit, "command words are matched case-insensitively")
	assert.Equal(t, []string{"monitor mdw phys 0x40020000"}, script.executed)
	assert.Contains(t, out.String(), "0xa8000000 (0xa8000000)")
}

func TestShellCompleter(t *testing.T) {
	device := testDevice()
	complete := shellCompleter(device, shellCommands())

	cases := map[string][]string{
		"":                 {"dump", "exit", "get", "help", "info", "quit", "set"},
		"g":                {"get"},
		"ge":               {"get"},
		"get ":             {"get GPIOA", "get GPIOB", "get USART1"},
		"get gp":           {"get GPIOA", "get GPIOB"},
		"get gpioa ":       {"get gpioa BSRR", "get gpioa IDR", "get gpioa MODER"},
		"get gpioa MOD":    {"get gpioa MODER"},
		"set gpioa moder ": {"set gpioa moder MODER0", "set gpioa moder MODER1", "set gpioa moder MODER15"},
		"info u":           {"info USART1"},
	}

	for input, expected := range cases {
		assert.Equal(t, expected, complete(input), "input %q", input)
	}
}

func TestShellCompleter_NothingToOffer(t *testing.T) {
	device := testDevice()
	complete := shellCompleter(device, shellCommands())

	assert.Empty(t, complete("dump "), "the first dump argument is a file name")
	assert.Empty(t, complete("get gpioa moder "), "get takes no third argument")
	assert.Empty(t, complete("get zz"), "no peripheral matches")
	assert.Empty(t, complete("frobnicate "), "unknown command")
	assert.Empty(t, complete("get gpio "), "ambiguous peripheral cannot anchor register completion")
}

func TestShellCompleter_DumpPeripheralArgument(t *testing.T) {
	device := testDevice()
	complete := shellCompleter(device, shellCommands())

	assert.Equal(t, []string{"dump regs.txt GPIOA", "dump regs.txt GPIOB"}, complete("dump regs.txt gpio"))
}
