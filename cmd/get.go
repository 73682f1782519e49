package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AdronTech/svd-tools/pkg/regmap"
	"github.com/AdronTech/svd-tools/pkg/target"
	"github.com/AdronTech/svd-tools/pkg/utils"
)

var getCmd = &cobra.Command{
	Use:   "get <peripheral> [register]",
	Short: "Read peripheral registers from the target",
	Long: `Reads peripheral registers through the debug monitor and shows each one
next to its reset value, with every field unpacked. With no register
argument the whole peripheral is read.

Names are matched by case-insensitive prefix: 'get GPIOA MOD' reads
GPIOA's MODER register.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		device, err := loadDevice()
		cobra.CheckErr(err)

		session, console, err := openSession()
		cobra.CheckErr(err)
		defer console.Close()

		if !runGet(os.Stdout, device, session, args) {
			os.Exit(1)
		}
	},
	ValidArgsFunction: completeModelArgs(2),
}

func init() {
	RootCmd.AddCommand(getCmd)
}

func runGet(out io.Writer, device *regmap.Device, session *target.Session, args []string) bool {
	peripheral, found := resolvePeripheral(out, device, args[0])
	if !found {
		return false
	}

	if len(args) < 2 {
		renderTitle(out, true, "%v @%v", peripheral.Name, utils.FormatUintHex(peripheral.BaseAddress, 32))
		renderReadings(out, session.ReadPeripheral(peripheral), true)
		return true
	}

	register, found := resolveRegister(out, peripheral, args[1])
	if !found {
		return false
	}

	renderTitle(out, true, "%v:%v", peripheral.Name, register.Name)
	renderReadings(out, []target.Reading{session.ReadRegister(register)}, true)

	return true
}
