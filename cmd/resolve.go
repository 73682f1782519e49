package cmd

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/AdronTech/svd-tools/pkg/regmap"
	"github.com/AdronTech/svd-tools/pkg/svd"
	"github.com/AdronTech/svd-tools/pkg/target"
)

var errNoDescription = errors.New("no SVD description set, use --svd, the SVD environment variable or the config file")

// loadDevice parses the configured SVD description and builds its
// register map.
func loadDevice() (*regmap.Device, error) {
	path := viper.GetString("svd")
	if path == "" {
		return nil, errNoDescription
	}

	document, err := svd.ParseFile(path)
	if err != nil {
		return nil, err
	}

	device, err := regmap.Build(document)
	if err != nil {
		return nil, err
	}

	for _, warning := range device.Warnings {
		slog.Warn(warning)
	}
	slog.Info("device description loaded", "file", path, "device", device.Name, "peripherals", len(device.Peripherals))

	return device, nil
}

const monitorDialTimeout = 5 * time.Second

// openSession connects to the configured debug monitor and stacks a
// register session on top. The backend flavor is probed unless a custom
// dialect file overrides the command templates.
func openSession() (*target.Session, io.Closer, error) {
	address := viper.GetString("connect")

	runner, err := target.DialNet(address, monitorDialTimeout)
	if err != nil {
		return nil, nil, err
	}

	var transport *target.Transport

	if path := viper.GetString("dialect"); path != "" {
		dialect, err := target.LoadDialect(path)
		if err != nil {
			runner.Close()
			return nil, nil, err
		}
		transport = target.NewTransport(runner, dialect, slog.Default())
	} else {
		transport = target.DetectTransport(runner, slog.Default())
	}

	slog.Info("debug monitor connected", "address", address, "dialect", transport.Dialect().Name)

	return target.NewSession(transport), runner, nil
}

// resolvePeripheral looks a peripheral up by name prefix, printing the
// guidance the user needs whenever the lookup does not settle on one:
// the full peripheral list when nothing matches, the narrowed list when
// several do.
func resolvePeripheral(out io.Writer, device *regmap.Device, query string) (*regmap.Peripheral, bool) {
	resolution := regmap.Resolve(device.Peripherals, query)

	switch {
	case resolution.None():
		colorError.Fprintf(out, "no peripheral matches '%v'\n", query)
		renderPeripherals(out, device.Peripherals, "", true)
		return nil, false

	case resolution.Ambiguous():
		colorNotice.Fprintf(out, "several peripherals match '%v'\n", query)
		renderPeripherals(out, resolution.Matches, query, true)
		return nil, false
	}

	peripheral := resolution.Entity()
	if !resolution.Exact() {
		colorNotice.Fprintf(out, "found peripheral '%v'\n", peripheral.Name)
	}

	return peripheral, true
}

func resolveRegister(out io.Writer, peripheral *regmap.Peripheral, query string) (*regmap.Register, bool) {
	resolution := regmap.Resolve(peripheral.Registers, query)

	switch {
	case resolution.None():
		colorError.Fprintf(out, "no register of %v matches '%v'\n", peripheral.Name, query)
		renderRegisters(out, peripheral.Registers, "", true)
		return nil, false

	case resolution.Ambiguous():
		colorNotice.Fprintf(out, "several registers of %v match '%v'\n", peripheral.Name, query)
		renderRegisters(out, resolution.Matches, query, true)
		return nil, false
	}

	register := resolution.Entity()
	if !resolution.Exact() {
		colorNotice.Fprintf(out, "found register '%v:%v'\n", peripheral.Name, register.Name)
	}

	return register, true
}

func resolveField(out io.Writer, register *regmap.Register, query string) (*regmap.Field, bool) {
	resolution := regmap.Resolve(register.Fields, query)

	switch {
	case resolution.None():
		colorError.Fprintf(out, "no field of %v:%v matches '%v'\n", register.Peripheral.Name, register.Name, query)
		renderFields(out, register, register.Fields, "", true)
		return nil, false

	case resolution.Ambiguous():
		colorNotice.Fprintf(out, "several fields of %v:%v match '%v'\n", register.Peripheral.Name, register.Name, query)
		renderFields(out, register, resolution.Matches, query, true)
		return nil, false
	}

	field := resolution.Entity()
	if !resolution.Exact() {
		colorNotice.Fprintf(out, "found field '%v' of %v:%v\n", field.Name, register.Peripheral.Name, register.Name)
	}

	return field, true
}
