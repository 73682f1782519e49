package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AdronTech/svd-tools/pkg/regmap"
	"github.com/AdronTech/svd-tools/pkg/target"
)

var setCmd = &cobra.Command{
	Use:   "set <peripheral> <register> [field] <value>",
	Short: "Write a register or a single field of it",
	Long: `Writes a value to a peripheral register, or to one named field of it,
and reads the register back afterwards to show the effect of the write.

Field writes read the current register word first and only replace the bits
of the addressed field. The value is parsed as hexadecimal, with or without
a leading 0x:

  svd-tools set gpioa moder 0xa8000000
  svd-tools set gpioa moder moder5 1`,
	Args: cobra.RangeArgs(3, 4),
	Run: func(cmd *cobra.Command, args []string) {
		device, err := loadDevice()
		cobra.CheckErr(err)

		session, console, err := openSession()
		cobra.CheckErr(err)
		defer console.Close()

		if !runSet(os.Stdout, device, session, args) {
			os.Exit(1)
		}
	},
	ValidArgsFunction: completeModelArgs(3),
}

func init() {
	RootCmd.AddCommand(setCmd)
}

func parseValue(literal string) (uint64, error) {
	trimmed := strings.TrimPrefix(strings.ToLower(literal), "0x")

	value, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("'%v' is not a hexadecimal value", literal)
	}

	return value, nil
}

func runSet(out io.Writer, device *regmap.Device, session *target.Session, args []string) bool {
	peripheral, ok := resolvePeripheral(out, device, args[0])
	if !ok {
		return false
	}

	register, ok := resolveRegister(out, peripheral, args[1])
	if !ok {
		return false
	}

	value, err := parseValue(args[len(args)-1])
	if err != nil {
		colorError.Fprintln(out, err)
		return false
	}

	if len(args) == 4 {
		field, ok := resolveField(out, register, args[2])
		if !ok {
			return false
		}

		if err := session.WriteField(register, field, value); err != nil {
			colorError.Fprintf(out, "cannot write %v:%v %v: %v\n", peripheral.Name, register.Name, field.Name, err)
			return false
		}

		colorSuccess.Fprintf(out, "%v:%v %v <- %#x\n", peripheral.Name, register.Name, field.Name, value)
	} else {
		if err := session.WriteRegister(register, value); err != nil {
			colorError.Fprintf(out, "cannot write %v:%v: %v\n", peripheral.Name, register.Name, err)
			return false
		}

		colorSuccess.Fprintf(out, "%v:%v <- %#x\n", peripheral.Name, register.Name, value)
	}

	renderReadings(out, []target.Reading{session.ReadRegister(register)}, true)

	return true
}
