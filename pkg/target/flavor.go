package target

import "strings"

// Flavor is the debug backend family sitting behind the monitor, which
// decides the memory access command syntax to use.
type Flavor int

const (
	// FlavorGDB covers any backend answering plain gdb memory commands.
	// It is the fallback when nothing more specific is recognized.
	FlavorGDB Flavor = iota

	// FlavorOpenOCD is an OpenOCD server.
	FlavorOpenOCD

	// FlavorGdbServer is an ST-style gdbserver.
	FlavorGdbServer
)

func (f Flavor) String() string {
	switch f {
	case FlavorOpenOCD:
		return "openocd"
	case FlavorGdbServer:
		return "gdbserver"
	}

	return "gdb"
}

const (
	versionProbeCommand   = "monitor version"
	gdbServerProbeCommand = "monitor gdbserver status"

	openocdMarker   = "Open On-Chip Debugger"
	gdbServerMarker = "gdbserver for"
)

// DetectFlavor probes the backend behind runner. The version probe is
// issued first and the gdbserver probe only when the version reply did not
// settle it; probe failures fall through to the generic gdb flavor.
func DetectFlavor(runner CommandRunner) Flavor {
	if reply, err := runner.Execute(versionProbeCommand); err == nil && strings.Contains(reply, openocdMarker) {
		return FlavorOpenOCD
	}

	if reply, err := runner.Execute(gdbServerProbeCommand); err == nil && strings.Contains(reply, gdbServerMarker) {
		return FlavorGdbServer
	}

	return FlavorGDB
}
