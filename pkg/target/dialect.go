package target

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AdronTech/svd-tools/pkg/utils"
)

// Dialect holds the memory access command templates of one backend
// family. Templates are fmt format strings: Read takes the address, Write
// takes the address and then the value, both rendered as %#x style
// hexadecimal.
type Dialect struct {
	Name  string `yaml:"name"`
	Read  string `yaml:"read"`
	Write string `yaml:"write"`
}

var (
	ErrBadDialect        = errors.New("bad dialect definition")
	ErrCannotOpenDialect = errors.New("cannot open dialect file")
)

// Dialect returns the built-in command templates of the flavor.
func (f Flavor) Dialect() Dialect {
	switch f {
	case FlavorOpenOCD:
		return Dialect{
			Name:  "openocd",
			Read:  "monitor mdw phys %#x",
			Write: "monitor mww phys %#x %#x",
		}
	case FlavorGdbServer:
		return Dialect{
			Name:  "gdbserver",
			Read:  "monitor rw %#x",
			Write: "monitor ww %#x %#x",
		}
	}

	return Dialect{
		Name:  "gdb",
		Read:  "x /x %#x",
		Write: "set *(int *)%#x=%#x",
	}
}

// LoadDialect reads a custom dialect definition from a yaml file with
// name, read and write keys.
func LoadDialect(path string) (Dialect, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Dialect{}, utils.MakeError(ErrCannotOpenDialect, "'%v': %v", path, err)
	}

	var dialect Dialect
	if err := yaml.Unmarshal(content, &dialect); err != nil {
		return Dialect{}, utils.MakeError(ErrBadDialect, "'%v': %v", path, err)
	}

	if dialect.Name == "" {
		dialect.Name = "custom"
	}

	if err := dialect.Validate(); err != nil {
		return Dialect{}, utils.MakeError(err, "file '%v'", path)
	}

	return dialect, nil
}

// Validate checks that the templates take the right number of values: one
// for the read command, two for the write command.
func (d Dialect) Validate() error {
	if verbs := countVerbs(d.Read); verbs != 1 {
		return utils.MakeError(ErrBadDialect, "read template '%v' takes %v values instead of 1", d.Read, verbs)
	}

	if verbs := countVerbs(d.Write); verbs != 2 {
		return utils.MakeError(ErrBadDialect, "write template '%v' takes %v values instead of 2", d.Write, verbs)
	}

	return nil
}

func countVerbs(template string) int {
	return strings.Count(strings.ReplaceAll(template, "%%", ""), "%")
}

// ReadCommand renders the monitor command reading the word at address.
func (d Dialect) ReadCommand(address uint64) string {
	return fmt.Sprintf(d.Read, address)
}

// WriteCommand renders the monitor command writing value at address.
func (d Dialect) WriteCommand(address, value uint64) string {
	return fmt.Sprintf(d.Write, address, value)
}
