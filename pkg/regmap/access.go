package regmap

import (
	"errors"

	"github.com/AdronTech/svd-tools/pkg/utils"
)

// Access is the declared access mode of a register or field.
type Access int

const (
	// The description declares no access mode. Treated as read-write.
	AccessUnspecified Access = iota
	AccessReadOnly
	AccessWriteOnly
	AccessReadWrite
	AccessWriteOnce
	AccessReadWriteOnce
)

var ErrUnknownAccess = errors.New("unknown access mode")

// ParseAccess maps an SVD access element body to its mode. The empty
// string parses to AccessUnspecified.
func ParseAccess(s string) (Access, error) {
	switch s {
	case "":
		return AccessUnspecified, nil
	case "read-only":
		return AccessReadOnly, nil
	case "write-only":
		return AccessWriteOnly, nil
	case "read-write":
		return AccessReadWrite, nil
	case "writeOnce":
		return AccessWriteOnce, nil
	case "read-writeOnce":
		return AccessReadWriteOnce, nil
	}

	return AccessUnspecified, utils.MakeError(ErrUnknownAccess, "'%v'", s)
}

// CanRead returns whether a register or field with this mode may be read
// through the debug transport.
func (a Access) CanRead() bool {
	switch a {
	case AccessUnspecified, AccessReadOnly, AccessReadWrite, AccessReadWriteOnce:
		return true
	}

	return false
}

// CanWrite returns whether a register or field with this mode may be
// written through the debug transport.
func (a Access) CanWrite() bool {
	switch a {
	case AccessUnspecified, AccessWriteOnly, AccessReadWrite, AccessWriteOnce, AccessReadWriteOnce:
		return true
	}

	return false
}

func (a Access) String() string {
	switch a {
	case AccessReadOnly:
		return "read-only"
	case AccessWriteOnly:
		return "write-only"
	case AccessReadWrite:
		return "read-write"
	case AccessWriteOnce:
		return "writeOnce"
	case AccessReadWriteOnce:
		return "read-writeOnce"
	}

	return "unspecified"
}

// Label returns the mode as shown to the user, with unspecified modes
// displayed as the read-write they behave as.
func (a Access) Label() string {
	if a == AccessUnspecified {
		return AccessReadWrite.String()
	}

	return a.String()
}
