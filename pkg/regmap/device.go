// Package regmap builds the semantic register map of a device out of its
// raw SVD description: peripheral inheritance and register arrays are
// expanded, size/access/reset defaults are cascaded down and field bit
// ranges are normalized, so that the rest of the tool never has to look
// at the description again.
package regmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AdronTech/svd-tools/pkg/svd"
	"github.com/AdronTech/svd-tools/pkg/utils"
)

type Device struct {
	Name        string
	Description string

	// Width is the data word width of the device bus, in bits.
	Width uint

	Peripherals []*Peripheral

	// Warnings collects the non-fatal oddities found while building the
	// map, one message each, in description order.
	Warnings []string
}

type Peripheral struct {
	Name        string
	Description string
	BaseAddress uint64
	Registers   []*Register
}

type Register struct {
	Name        string
	Description string

	// Offset is the register address relative to the peripheral base.
	Offset uint64

	// Size is the register width in bits.
	Size uint

	Access     Access
	ResetValue uint64
	Fields     []*Field

	Peripheral *Peripheral
}

// Address returns the absolute address of the register.
func (r *Register) Address() uint64 {
	return r.Peripheral.BaseAddress + r.Offset
}

type Field struct {
	Name        string
	Description string

	// BitOffset is the position of the least significant bit of the field
	// within its register.
	BitOffset uint

	// BitWidth is the number of bits of the field.
	BitWidth uint

	Access Access
}

// Named is implemented by every register map element that can be looked
// up by name.
type Named interface {
	GetName() string
}

func (p *Peripheral) GetName() string { return p.Name }
func (r *Register) GetName() string   { return r.Name }
func (f *Field) GetName() string      { return f.Name }

var (
	ErrDuplicatePeripheral   = errors.New("duplicate peripheral name")
	ErrUnknownBasePeripheral = errors.New("derivedFrom names an unknown peripheral")
)

const defaultRegisterSize = 32

// inherited register properties, cascaded device -> peripheral -> register
type defaults struct {
	size   uint
	access Access
	reset  uint64
}

type builder struct {
	device *Device
}

func (b *builder) warnf(format string, args ...any) {
	b.device.Warnings = append(b.device.Warnings, fmt.Sprintf(format, args...))
}

func (b *builder) parseAccess(owner, declared string) Access {
	access, err := ParseAccess(declared)
	if err != nil {
		b.warnf("%v: %v, treating as unspecified", owner, err)
	}

	return access
}

// Build expands the raw description doc into a register map. Peripheral
// name collisions are fatal, everything else odd is reported through
// Device.Warnings.
func Build(doc *svd.Device) (*Device, error) {
	width := uint(defaultRegisterSize)
	if doc.Width != nil {
		width = uint(*doc.Width)
	}

	b := &builder{
		device: &Device{
			Name:        doc.Name,
			Description: strings.TrimSpace(doc.Description),
			Width:       width,
		},
	}

	deviceDefaults := defaults{
		size:   width,
		access: b.parseAccess(fmt.Sprintf("device '%v'", doc.Name), doc.Access),
	}
	if doc.Size != nil {
		deviceDefaults.size = uint(*doc.Size)
	}
	if doc.ResetValue != nil {
		deviceDefaults.reset = uint64(*doc.ResetValue)
	}

	rawByName := make(map[string]*svd.Peripheral, len(doc.Peripherals))
	for _, raw := range doc.Peripherals {
		rawByName[raw.Name] = raw
	}

	seen := make(map[string]struct{}, len(doc.Peripherals))

	for _, raw := range doc.Peripherals {
		key := strings.ToUpper(raw.Name)
		if _, dup := seen[key]; dup {
			return nil, utils.MakeError(ErrDuplicatePeripheral, "'%v'", raw.Name)
		}
		seen[key] = struct{}{}

		peripheral, err := b.buildPeripheral(raw, rawByName, deviceDefaults)
		if err != nil {
			return nil, err
		}

		b.device.Peripherals = append(b.device.Peripherals, peripheral)
	}

	return b.device, nil
}

func (b *builder) buildPeripheral(raw *svd.Peripheral, rawByName map[string]*svd.Peripheral, inherited defaults) (*Peripheral, error) {
	description := raw.Description
	size := raw.Size
	access := raw.Access
	reset := raw.ResetValue
	registers := raw.Registers

	if raw.DerivedFrom != "" {
		base, found := rawByName[raw.DerivedFrom]
		if !found {
			return nil, utils.MakeError(ErrUnknownBasePeripheral, "peripheral '%v' derives from '%v'", raw.Name, raw.DerivedFrom)
		}

		if description == "" {
			description = base.Description
		}
		if size == nil {
			size = base.Size
		}
		if access == "" {
			access = base.Access
		}
		if reset == nil {
			reset = base.ResetValue
		}
		if len(registers) == 0 {
			registers = base.Registers
		}
	}

	peripheralDefaults := inherited
	if size != nil {
		peripheralDefaults.size = uint(*size)
	}
	if parsed := b.parseAccess(fmt.Sprintf("peripheral '%v'", raw.Name), access); parsed != AccessUnspecified {
		peripheralDefaults.access = parsed
	}
	if reset != nil {
		peripheralDefaults.reset = uint64(*reset)
	}

	peripheral := &Peripheral{
		Name:        raw.Name,
		Description: strings.TrimSpace(description),
		BaseAddress: uint64(raw.BaseAddress),
	}

	registerNames := make(map[string]struct{}, len(registers))

	for _, rawRegister := range registers {
		for _, register := range b.buildRegisters(peripheral, rawRegister, peripheralDefaults) {
			if _, dup := registerNames[strings.ToUpper(register.Name)]; dup {
				b.warnf("peripheral '%v': duplicate register name '%v'", peripheral.Name, register.Name)
			}
			registerNames[strings.ToUpper(register.Name)] = struct{}{}

			peripheral.Registers = append(peripheral.Registers, register)
		}
	}

	return peripheral, nil
}

// buildRegisters expands one raw register element into its register
// instances: one for plain registers, dim of them for register arrays.
func (b *builder) buildRegisters(peripheral *Peripheral, raw *svd.Register, inherited defaults) []*Register {
	size := inherited.size
	if raw.Size != nil {
		size = uint(*raw.Size)
	}

	access := b.parseAccess(fmt.Sprintf("register '%v:%v'", peripheral.Name, raw.Name), raw.Access)
	if access == AccessUnspecified {
		access = inherited.access
	}

	reset := inherited.reset
	if raw.ResetValue != nil {
		reset = uint64(*raw.ResetValue)
	}

	fields := b.buildFields(peripheral.Name, raw, size)

	makeRegister := func(name string, offset uint64) *Register {
		return &Register{
			Name:        name,
			Description: strings.TrimSpace(raw.Description),
			Offset:      offset,
			Size:        size,
			Access:      access,
			ResetValue:  reset,
			Fields:      fields,
			Peripheral:  peripheral,
		}
	}

	if raw.Dim == nil {
		return []*Register{makeRegister(raw.Name, uint64(raw.AddressOffset))}
	}

	count := int(*raw.Dim)

	increment := uint64(size / 8)
	if raw.DimIncrement != nil {
		increment = uint64(*raw.DimIncrement)
	}

	indices := b.dimIndices(peripheral.Name, raw, count)

	registers := make([]*Register, 0, count)
	for i := 0; i < count; i++ {
		name := raw.Name
		if strings.Contains(name, "%s") {
			name = strings.Replace(name, "%s", indices[i], 1)
		} else {
			name = name + indices[i]
		}

		registers = append(registers, makeRegister(name, uint64(raw.AddressOffset)+uint64(i)*increment))
	}

	return registers
}

// dimIndices returns the count index strings substituted into the names of
// a register array, honoring the <dimIndex> list or range notation and
// falling back to 0..count-1.
func (b *builder) dimIndices(peripheralName string, raw *svd.Register, count int) []string {
	numeric := func() []string {
		return utils.Iota(count, func(i int) string { return strconv.Itoa(i) })
	}

	spec := strings.TrimSpace(raw.DimIndex)
	if spec == "" {
		return numeric()
	}

	var indices []string

	if strings.Contains(spec, ",") {
		for _, index := range strings.Split(spec, ",") {
			indices = append(indices, strings.TrimSpace(index))
		}
	} else if first, last, isRange := strings.Cut(spec, "-"); isRange {
		begin, beginErr := strconv.Atoi(strings.TrimSpace(first))
		end, endErr := strconv.Atoi(strings.TrimSpace(last))
		if beginErr != nil || endErr != nil || end < begin {
			b.warnf("peripheral '%v': register '%v' has malformed dimIndex '%v'", peripheralName, raw.Name, raw.DimIndex)
			return numeric()
		}
		for i := begin; i <= end; i++ {
			indices = append(indices, strconv.Itoa(i))
		}
	} else {
		indices = []string{spec}
	}

	if len(indices) != count {
		b.warnf("peripheral '%v': register '%v' declares %v dim indices for %v instances", peripheralName, raw.Name, len(indices), count)
		return numeric()
	}

	return indices
}

func (b *builder) buildFields(peripheralName string, raw *svd.Register, registerSize uint) []*Field {
	fields := make([]*Field, 0, len(raw.Fields))

	for _, rawField := range raw.Fields {
		offset, width, err := rawField.Range()
		if err != nil {
			b.warnf("peripheral '%v': register '%v': %v, skipping field", peripheralName, raw.Name, err)
			continue
		}

		if offset+width > registerSize {
			b.warnf("peripheral '%v': register '%v': field '%v' spans bits %v:%v beyond the %v-bit register",
				peripheralName, raw.Name, rawField.Name, offset+width-1, offset, registerSize)
		}

		fields = append(fields, &Field{
			Name:        rawField.Name,
			Description: strings.TrimSpace(rawField.Description),
			BitOffset:   offset,
			BitWidth:    width,
			Access:      b.parseAccess(fmt.Sprintf("field '%v:%v:%v'", peripheralName, raw.Name, rawField.Name), rawField.Access),
		})
	}

	return fields
}
