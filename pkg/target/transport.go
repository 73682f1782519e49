package target

import (
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/AdronTech/svd-tools/pkg/utils"
)

var (
	ErrReadFailed  = errors.New("target read failed")
	ErrWriteFailed = errors.New("target write failed")
)

// Transport performs word sized memory accesses over a CommandRunner
// using the command syntax of one Dialect.
type Transport struct {
	runner  CommandRunner
	dialect Dialect
	log     *slog.Logger
}

// NewTransport builds a transport speaking the given dialect. A nil
// logger falls back to the default one.
func NewTransport(runner CommandRunner, dialect Dialect, log *slog.Logger) *Transport {
	if log == nil {
		log = slog.Default()
	}

	return &Transport{
		runner:  runner,
		dialect: dialect,
		log:     log.With("dialect", dialect.Name),
	}
}

// DetectTransport probes the backend behind runner and builds a transport
// speaking its built-in dialect.
func DetectTransport(runner CommandRunner, log *slog.Logger) *Transport {
	return NewTransport(runner, DetectFlavor(runner).Dialect(), log)
}

func (t *Transport) Dialect() Dialect {
	return t.dialect
}

// Replies are scanned for an address-and-colon prefix followed by a hex
// value, which covers both the openocd "0x40020000: a8000000" and the gdb
// "0x40020000 <sym>:	0xa8000000" reply shapes.
var readReplyPattern = regexp.MustCompile(`(?i)(?:0x)?[0-9a-f]+[^:\r\n]*:\s*(?:0x)?([0-9a-f]+)`)

// ReadWord reads the memory word at address.
func (t *Transport) ReadWord(address uint64) (uint64, error) {
	command := t.dialect.ReadCommand(address)

	reply, err := t.runner.Execute(command)
	t.log.Debug("target read", "command", command, "reply", reply)
	if err != nil {
		return 0, utils.MakeError(ErrReadFailed, "address %#x: %v", address, err)
	}

	match := readReplyPattern.FindStringSubmatch(reply)
	if match == nil {
		return 0, utils.MakeError(ErrReadFailed, "address %#x: no value in reply '%v'", address, strings.TrimSpace(reply))
	}

	value, err := strconv.ParseUint(match[1], 16, 64)
	if err != nil {
		return 0, utils.MakeError(ErrReadFailed, "address %#x: bad value in reply '%v'", address, strings.TrimSpace(reply))
	}

	return value, nil
}

// WriteWord writes value into the memory word at address. The reply text
// is not inspected, monitors only print on failure and not all of them
// even do that.
func (t *Transport) WriteWord(address, value uint64) error {
	command := t.dialect.WriteCommand(address, value)

	reply, err := t.runner.Execute(command)
	t.log.Debug("target write", "command", command, "reply", reply)
	if err != nil {
		return utils.MakeError(ErrWriteFailed, "address %#x: %v", address, err)
	}

	return nil
}
