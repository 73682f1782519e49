package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AdronTech/svd-tools/pkg/regmap"
	"github.com/AdronTech/svd-tools/pkg/target"
	"github.com/AdronTech/svd-tools/pkg/utils"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file> [peripheral]",
	Short: "Dump register values to a file",
	Long: `Reads registers from the target and writes their values to a file,
overwriting any previous content. Without a peripheral argument the whole
device is dumped; with one, every peripheral matching the prefix is:

  svd-tools dump stm32.dump
  svd-tools dump gpio.dump gpio`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		device, err := loadDevice()
		cobra.CheckErr(err)

		session, console, err := openSession()
		cobra.CheckErr(err)
		defer console.Close()

		if !runDump(os.Stdout, device, session, args) {
			os.Exit(1)
		}
	},
}

func init() {
	RootCmd.AddCommand(dumpCmd)
}

// dumpPeripherals writes a plain text dump of the given peripherals,
// reading every register through the session.
func dumpPeripherals(w io.Writer, device *regmap.Device, session *target.Session, peripherals []*regmap.Peripheral) {
	fmt.Fprintf(w, "%v register dump, taken %v\n", device.Name, time.Now().Format(time.DateTime))

	for _, peripheral := range peripherals {
		fmt.Fprintln(w)
		renderTitle(w, false, "%v @%v", peripheral.Name, utils.FormatUintHex(peripheral.BaseAddress, 32))
		renderReadings(w, session.ReadPeripheral(peripheral), false)
	}
}

func runDump(out io.Writer, device *regmap.Device, session *target.Session, args []string) bool {
	peripherals := device.Peripherals

	if len(args) == 2 {
		resolution := regmap.Resolve(device.Peripherals, args[1])
		if resolution.None() {
			colorError.Fprintf(out, "no peripheral matches '%v'\n", args[1])
			renderPeripherals(out, device.Peripherals, "", true)
			return false
		}

		peripherals = resolution.Matches
	}

	file, err := os.Create(args[0])
	if err != nil {
		colorError.Fprintf(out, "cannot write dump: %v\n", err)
		return false
	}
	defer file.Close()

	dumpPeripherals(file, device, session, peripherals)

	colorSuccess.Fprintf(out, "dumped %v peripherals to %v\n", len(peripherals), args[0])

	return true
}
