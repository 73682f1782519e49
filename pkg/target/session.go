package target

import (
	"errors"

	"github.com/AdronTech/svd-tools/pkg/bitfield"
	"github.com/AdronTech/svd-tools/pkg/regmap"
	"github.com/AdronTech/svd-tools/pkg/utils"
)

var (
	ErrNotReadable = errors.New("register is not readable")
	ErrNotWritable = errors.New("register is not writable")
)

// Session applies register map semantics on top of a raw memory
// transport: access modes gate every operation and fields are unpacked
// from and packed into whole register words.
type Session struct {
	transport *Transport
}

func NewSession(transport *Transport) *Session {
	return &Session{transport: transport}
}

func (s *Session) Transport() *Transport {
	return s.transport
}

// FieldValue is the value of one field unpacked from a register word,
// next to the value the field holds after reset.
type FieldValue struct {
	Field *regmap.Field
	Value uint64
	Reset uint64
}

// Changed returns whether the field left its reset value.
func (v FieldValue) Changed() bool {
	return v.Value != v.Reset
}

// Label returns the field name annotated with its bit range.
func (v FieldValue) Label() string {
	return bitfield.Label(v.Field.Name, v.Field.BitOffset, v.Field.BitWidth)
}

// Reading is the outcome of reading one register. Registers that cannot
// be read and reads that failed on the wire still produce a Reading, so
// that a bulk read renders one row per register no matter what.
type Reading struct {
	Register *regmap.Register

	// HasValue tells Value and Fields apart from a read that never
	// happened (unreadable register) or failed (Err is set).
	HasValue bool
	Value    uint64
	Err      error
	Fields   []FieldValue
}

// Changed returns whether the register word left its reset value.
func (r Reading) Changed() bool {
	return r.HasValue && r.Value != r.Register.ResetValue
}

// ReadRegister reads one register, honoring its access mode: registers
// that cannot be read come back without a value and without touching the
// transport.
func (s *Session) ReadRegister(register *regmap.Register) Reading {
	reading := Reading{Register: register}

	if !register.Access.CanRead() {
		return reading
	}

	value, err := s.transport.ReadWord(register.Address())
	if err != nil {
		reading.Err = err
		return reading
	}

	reading.HasValue = true
	reading.Value = value
	reading.Fields = make([]FieldValue, 0, len(register.Fields))

	for _, field := range register.Fields {
		reading.Fields = append(reading.Fields, FieldValue{
			Field: field,
			Value: bitfield.Extract(value, field.BitOffset, field.BitWidth),
			Reset: bitfield.Extract(register.ResetValue, field.BitOffset, field.BitWidth),
		})
	}

	return reading
}

// ReadPeripheral reads every register of the peripheral. Failed rows do
// not stop the scan.
func (s *Session) ReadPeripheral(peripheral *regmap.Peripheral) []Reading {
	readings := make([]Reading, 0, len(peripheral.Registers))

	for _, register := range peripheral.Registers {
		readings = append(readings, s.ReadRegister(register))
	}

	return readings
}

// WriteRegister writes a whole register word. The value is not checked
// against the register width, monitors truncate as their word size
// dictates.
func (s *Session) WriteRegister(register *regmap.Register, value uint64) error {
	if !register.Access.CanWrite() {
		return utils.MakeError(ErrNotWritable, "register '%v:%v' is %v",
			register.Peripheral.Name, register.Name, register.Access.Label())
	}

	return s.transport.WriteWord(register.Address(), value)
}

// WriteField writes one field of a register, reading the current word and
// merging the field bits into it first. The read-merge-write sequence is
// not atomic with respect to the running firmware. All checks happen
// before the first transport command, so a rejected write touches
// nothing.
func (s *Session) WriteField(register *regmap.Register, field *regmap.Field, value uint64) error {
	if !bitfield.Fits(value, field.BitWidth) {
		return utils.MakeError(bitfield.ErrValueTooWide, "%#x does not fit in field %v",
			value, bitfield.Label(field.Name, field.BitOffset, field.BitWidth))
	}

	if !register.Access.CanRead() {
		return utils.MakeError(ErrNotReadable, "field writes read the register back first, but '%v:%v' is %v",
			register.Peripheral.Name, register.Name, register.Access.Label())
	}

	mode := field.Access
	if mode == regmap.AccessUnspecified {
		mode = register.Access
	}
	if !mode.CanWrite() {
		return utils.MakeError(ErrNotWritable, "field '%v' of register '%v:%v' is %v",
			field.Name, register.Peripheral.Name, register.Name, mode.Label())
	}

	current, err := s.transport.ReadWord(register.Address())
	if err != nil {
		return err
	}

	merged, err := bitfield.Merge(current, field.BitOffset, field.BitWidth, value)
	if err != nil {
		return err
	}

	return s.transport.WriteWord(register.Address(), merged)
}
