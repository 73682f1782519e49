// Package target talks to the memory of a live device through a debug
// monitor. Monitor commands are plain text lines whose syntax depends on
// the debug backend in use, so the package is split in layers: a
// CommandRunner carries lines to some backend, a Dialect renders
// read/write commands for one backend family, a Transport turns both into
// word sized memory accesses and a Session applies register semantics
// (access modes, field packing) on top.
package target

import (
	"errors"
	"net"
	"strings"
	"time"

	"github.com/AdronTech/svd-tools/pkg/utils"
)

var (
	ErrCannotConnect  = errors.New("cannot connect to the debug monitor")
	ErrConnectionLost = errors.New("debug monitor connection lost")
)

// CommandRunner executes one debug monitor command and returns whatever
// text the monitor printed in response.
type CommandRunner interface {
	Execute(command string) (string, error)
}

// RunnerFunc adapts a plain function to the CommandRunner interface.
type RunnerFunc func(command string) (string, error)

func (f RunnerFunc) Execute(command string) (string, error) {
	return f(command)
}

// NetRunner is a CommandRunner connected to a line oriented monitor
// console over TCP, such as the telnet server of OpenOCD.
type NetRunner struct {
	conn    net.Conn
	prompt  string
	timeout time.Duration
}

const (
	defaultPrompt      = "> "
	bannerDrainTimeout = 500 * time.Millisecond
)

// NewNetRunner wraps an established console connection. The connection
// banner, if any, is discarded.
func NewNetRunner(conn net.Conn, timeout time.Duration) *NetRunner {
	runner := &NetRunner{
		conn:    conn,
		prompt:  defaultPrompt,
		timeout: timeout,
	}
	runner.drainBanner()

	return runner
}

// DialNet connects to the monitor console listening at address.
func DialNet(address string, timeout time.Duration) (*NetRunner, error) {
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, utils.MakeError(ErrCannotConnect, "'%v': %v", address, err)
	}

	return NewNetRunner(conn, timeout), nil
}

func (r *NetRunner) Close() error {
	return r.conn.Close()
}

// Execute sends one command line and collects the reply until the console
// prompts again. Consoles that never prompt are given the full command
// timeout to finish printing.
func (r *NetRunner) Execute(command string) (string, error) {
	if err := r.conn.SetDeadline(time.Now().Add(r.timeout)); err != nil {
		return "", utils.MakeError(ErrConnectionLost, "%v", err)
	}

	if _, err := r.conn.Write([]byte(command + "\r\n")); err != nil {
		return "", utils.MakeError(ErrConnectionLost, "%v", err)
	}

	raw, err := r.readUntilPrompt()
	if err != nil {
		return "", err
	}

	return cleanReply(raw, command, r.prompt), nil
}

func (r *NetRunner) readUntilPrompt() (string, error) {
	var reply strings.Builder
	buffer := make([]byte, 4096)

	for {
		n, err := r.conn.Read(buffer)
		reply.Write(buffer[:n])

		if endsWithPrompt(reply.String(), r.prompt) {
			return reply.String(), nil
		}

		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() && reply.Len() > 0 {
				return reply.String(), nil
			}
			return "", utils.MakeError(ErrConnectionLost, "%v", err)
		}
	}
}

// drainBanner eats whatever the console prints on connect, up to its
// first prompt.
func (r *NetRunner) drainBanner() {
	if err := r.conn.SetDeadline(time.Now().Add(bannerDrainTimeout)); err != nil {
		return
	}

	buffer := make([]byte, 4096)
	var banner strings.Builder

	for {
		n, err := r.conn.Read(buffer)
		banner.Write(buffer[:n])

		if err != nil || endsWithPrompt(banner.String(), r.prompt) {
			return
		}
	}
}

func endsWithPrompt(text, prompt string) bool {
	text = stripTelnetControls(text)
	if !strings.HasSuffix(text, prompt) {
		return false
	}

	head := strings.TrimSuffix(text, prompt)
	return head == "" || strings.HasSuffix(head, "\n") || strings.HasSuffix(head, "\r")
}

// cleanReply strips the command echo, the trailing prompt and the telnet
// line endings from a raw console reply.
func cleanReply(raw, command, prompt string) string {
	raw = stripTelnetControls(raw)
	raw = strings.ReplaceAll(raw, "\r", "")

	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == strings.TrimSpace(command) || trimmed == strings.TrimSpace(prompt) {
			continue
		}
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// stripTelnetControls removes the IAC negotiation sequences a telnet
// server may interleave with the console text.
func stripTelnetControls(text string) string {
	const iac = 0xff

	var cleaned strings.Builder
	data := []byte(text)

	for i := 0; i < len(data); i++ {
		if data[i] != iac {
			cleaned.WriteByte(data[i])
			continue
		}

		// IAC, command, option
		if i+1 < len(data) && data[i+1] == iac {
			cleaned.WriteByte(iac)
			i++
			continue
		}
		i += 2
	}

	return cleaned.String()
}
