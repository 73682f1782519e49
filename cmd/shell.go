package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/AdronTech/svd-tools/pkg/regmap"
	"github.com/AdronTech/svd-tools/pkg/target"
	"github.com/AdronTech/svd-tools/pkg/utils"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive shell with completion over the loaded device",
	Long: `Opens an interactive shell speaking the same commands as the CLI, with
history and tab completion over peripheral, register and field names. The
target connection is opened once and reused for every command.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		device, err := loadDevice()
		cobra.CheckErr(err)

		session, console, err := openSession()
		if err != nil {
			colorWarning.Printf("cannot reach the target: %v\n", err)
			colorWarning.Println("Commands touching the target are disabled.")
		} else {
			defer console.Close()
		}

		runShell(device, session)
	},
}

func init() {
	RootCmd.AddCommand(shellCmd)
}

type shellCommand struct {
	use         string
	short       string
	minArgs     int
	maxArgs     int
	needsTarget bool
	run         func(out io.Writer, device *regmap.Device, session *target.Session, args []string) bool
}

func shellCommands() map[string]shellCommand {
	return map[string]shellCommand{
		"get": {
			use:         "get <peripheral> [register]",
			short:       "read registers from the target",
			minArgs:     1,
			maxArgs:     2,
			needsTarget: true,
			run:         runGet,
		},
		"set": {
			use:         "set <peripheral> <register> [field] <value>",
			short:       "write a register or one field of it",
			minArgs:     3,
			maxArgs:     4,
			needsTarget: true,
			run:         runSet,
		},
		"info": {
			use:     "info [peripheral] [register] [field]",
			short:   "describe the device without touching the target",
			minArgs: 0,
			maxArgs: 3,
			run: func(out io.Writer, device *regmap.Device, session *target.Session, args []string) bool {
				return runInfo(out, device, args)
			},
		},
		"dump": {
			use:         "dump <file> [peripheral]",
			short:       "dump register values to a file",
			minArgs:     1,
			maxArgs:     2,
			needsTarget: true,
			run:         runDump,
		},
	}
}

func printShellHelp(out io.Writer, commands map[string]shellCommand) {
	names := utils.Keys(commands)
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(out, "  %-44v %v\n", commands[name].use, commands[name].short)
	}

	fmt.Fprintf(out, "  %-44v %v\n", "help", "show this help")
	fmt.Fprintf(out, "  %-44v %v\n", "quit", "leave the shell")
}

// dispatchShellLine runs one shell input line and reports whether the
// shell should terminate.
func dispatchShellLine(out io.Writer, device *regmap.Device, session *target.Session, commands map[string]shellCommand, input string) (quit bool) {
	words := strings.Fields(input)
	if len(words) == 0 {
		return false
	}

	name, args := strings.ToLower(words[0]), words[1:]

	switch name {
	case "quit", "exit":
		return true
	case "help":
		printShellHelp(out, commands)
		return false
	}

	command, found := commands[name]
	if !found {
		colorError.Fprintf(out, "unknown command '%v', try 'help'\n", name)
		return false
	}

	if len(args) < command.minArgs || len(args) > command.maxArgs {
		colorError.Fprintf(out, "usage: %v\n", command.use)
		return false
	}

	if command.needsTarget && session == nil {
		colorError.Fprintf(out, "%v needs a target connection\n", name)
		return false
	}

	command.run(out, device, session, args)

	return false
}

// shellCompleter completes the command word first and device model names
// afterwards. liner replaces the whole line, so every candidate carries
// the already typed words as its prefix.
func shellCompleter(device *regmap.Device, commands map[string]shellCommand) func(string) []string {
	names := append(utils.Keys(commands), "help", "quit", "exit")
	sort.Strings(names)

	return func(input string) []string {
		words := strings.Fields(input)

		completed, partial := words, ""
		if len(words) > 0 && !strings.HasSuffix(input, " ") {
			completed, partial = words[:len(words)-1], words[len(words)-1]
		}

		var candidates []string

		if len(completed) == 0 {
			candidates = names
		} else if command, found := commands[completed[0]]; found {
			modelArgs, depth := completed[1:], command.maxArgs
			if completed[0] == "dump" {
				// The first dump argument is a file name, not a model name.
				if len(modelArgs) == 0 {
					return nil
				}
				modelArgs, depth = modelArgs[1:], depth-1
			}

			if len(modelArgs) < depth {
				candidates = modelCandidates(device, modelArgs)
			}
		}

		line := strings.Join(completed, " ")
		if line != "" {
			line += " "
		}

		return utils.Map(filterByPrefix(candidates, partial), func(candidate string) string {
			return line + candidate
		})
	}
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".svd-tools_history"
	}

	return filepath.Join(home, ".svd-tools_history")
}

func runShell(device *regmap.Device, session *target.Session) {
	commands := shellCommands()

	console := liner.NewLiner()
	defer console.Close()

	console.SetCtrlCAborts(true)
	console.SetMultiLineMode(false)
	console.SetCompleter(shellCompleter(device, commands))

	historyFile := historyFilePath()
	if file, err := os.Open(historyFile); err == nil {
		console.ReadHistory(file)
		file.Close()
	}

	fmt.Printf("Inspecting %v, %v peripherals loaded.\n", device.Name, len(device.Peripherals))
	colorSuccess.Println("Type 'help' for available commands.")

	for {
		input, err := console.Prompt("(svd-tools) ")
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				break
			}
			if err == liner.ErrPromptAborted {
				fmt.Println()
				continue
			}
			colorError.Printf("cannot read input: %v\n", err)
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		console.AppendHistory(input)

		if dispatchShellLine(os.Stdout, device, session, commands, input) {
			break
		}
	}

	if file, err := os.Create(historyFile); err == nil {
		console.WriteHistory(file)
		file.Close()
	}
}
