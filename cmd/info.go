package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AdronTech/svd-tools/pkg/regmap"
	"github.com/AdronTech/svd-tools/pkg/utils"
)

var infoCmd = &cobra.Command{
	Use:   "info [peripheral] [register] [field]",
	Short: "Describe the device without touching the target",
	Long: `Walks the loaded device description and prints peripherals, registers or
fields. Unlike get, info never talks to the target, so it works without a
debug monitor connection:

  svd-tools info               lists every peripheral
  svd-tools info gpioa         lists the registers of GPIOA
  svd-tools info gpioa moder   draws the field layout of GPIOA:MODER
  svd-tools info gpioa moder m lists the MODER fields starting with "m"`,
	Args: cobra.MaximumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		device, err := loadDevice()
		cobra.CheckErr(err)

		if !runInfo(os.Stdout, device, args) {
			os.Exit(1)
		}
	},
	ValidArgsFunction: completeModelArgs(3),
}

func init() {
	RootCmd.AddCommand(infoCmd)
}

func runInfo(out io.Writer, device *regmap.Device, args []string) bool {
	if len(args) == 0 {
		renderTitle(out, true, "%v (%v-bit)", device.Name, device.Width)
		if device.Description != "" {
			fmt.Fprintln(out, device.Description)
		}
		renderPeripherals(out, device.Peripherals, "", true)
		return true
	}

	peripheral, ok := resolvePeripheral(out, device, args[0])
	if !ok {
		return false
	}

	if len(args) == 1 {
		renderTitle(out, true, "%v @%v", peripheral.Name, utils.FormatUintHex(peripheral.BaseAddress, 32))
		if peripheral.Description != "" {
			fmt.Fprintln(out, peripheral.Description)
		}
		renderRegisters(out, peripheral.Registers, "", true)
		return true
	}

	register, ok := resolveRegister(out, peripheral, args[1])
	if !ok {
		return false
	}

	if len(args) == 2 {
		renderRegisterDetail(out, register, true)
		return true
	}

	resolution := regmap.Resolve(register.Fields, args[2])
	if resolution.None() {
		colorError.Fprintf(out, "no field of %v:%v matches '%v'\n", peripheral.Name, register.Name, args[2])
		renderFields(out, register, register.Fields, "", true)
		return false
	}

	renderTitle(out, true, "%v:%v", peripheral.Name, register.Name)
	renderFields(out, register, resolution.Matches, args[2], true)

	return true
}
