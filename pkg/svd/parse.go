package svd

import (
	"encoding/xml"
	"errors"
	"io"
	"os"

	"github.com/AdronTech/svd-tools/pkg/utils"
)

var (
	ErrCannotOpenFile       = errors.New("cannot open SVD file")
	ErrInvalidDescription   = errors.New("invalid SVD description")
	ErrNoPeripheralsDefined = errors.New("SVD description defines no peripherals")
)

// Parse decodes a full device description from r.
func Parse(r io.Reader) (*Device, error) {
	decoder := xml.NewDecoder(r)

	var device Device
	if err := decoder.Decode(&device); err != nil {
		return nil, utils.MakeError(ErrInvalidDescription, "%v", err)
	}
	if device.Name == "" {
		return nil, utils.MakeError(ErrInvalidDescription, "device element has no name")
	}
	if len(device.Peripherals) == 0 {
		return nil, utils.MakeError(ErrNoPeripheralsDefined, "device '%v'", device.Name)
	}

	return &device, nil
}

// ParseFile decodes the device description stored at path.
func ParseFile(path string) (*Device, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, utils.MakeError(ErrCannotOpenFile, "'%v'", path)
	}
	defer file.Close()

	device, err := Parse(file)
	if err != nil {
		return nil, utils.MakeError(err, "file '%v'", path)
	}

	return device, nil
}
