package cmd

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"

	"github.com/AdronTech/svd-tools/pkg/bitfield"
	"github.com/AdronTech/svd-tools/pkg/regmap"
	"github.com/AdronTech/svd-tools/pkg/target"
	"github.com/AdronTech/svd-tools/pkg/utils"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the device interactively",
	Long: `Opens a terminal UI with the device tree on the left and details of the
selected node on the right. Pressing Enter on a register reads it once from
the target. Without a target connection the tree still works, only live
values are unavailable. Press q to leave.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		device, err := loadDevice()
		cobra.CheckErr(err)

		session, console, err := openSession()
		if err != nil {
			colorWarning.Printf("cannot reach the target: %v\n", err)
			colorWarning.Println("Browsing the description only.")
		} else {
			defer console.Close()
		}

		cobra.CheckErr(runBrowse(device, session))
	},
}

func init() {
	RootCmd.AddCommand(browseCmd)
}

func peripheralDetailText(peripheral *regmap.Peripheral) string {
	var text strings.Builder

	fmt.Fprintf(&text, "[yellow]%v[-] @%v\n\n", peripheral.Name, utils.FormatUintHex(peripheral.BaseAddress, 32))
	fmt.Fprintf(&text, "%v\n\n", peripheral.Description)
	fmt.Fprintf(&text, "%v registers\n", len(peripheral.Registers))

	return text.String()
}

func registerDetailText(register *regmap.Register) string {
	var text strings.Builder

	fmt.Fprintf(&text, "[yellow]%v:%v[-] @%v\n\n", register.Peripheral.Name, register.Name, utils.FormatUintHex(register.Address(), 32))
	fmt.Fprintf(&text, "access: %v  size: %v bits\n", register.Access.Label(), register.Size)
	fmt.Fprintf(&text, "reset:  %#x\n\n", register.ResetValue)

	if register.Description != "" {
		fmt.Fprintf(&text, "%v\n\n", register.Description)
	}

	for _, field := range register.Fields {
		fmt.Fprintf(&text, "  %-14v %-12v reset %#x\n",
			bitfield.Label(field.Name, field.BitOffset, field.BitWidth),
			fieldMode(register, field).Label(),
			bitfield.Extract(register.ResetValue, field.BitOffset, field.BitWidth))
	}

	return text.String()
}

func readingDetailText(reading target.Reading) string {
	text := registerDetailText(reading.Register)

	if reading.Err != nil {
		return text + fmt.Sprintf("\n[red]read failed: %v[-]\n", reading.Err)
	}

	if !reading.HasValue {
		return text + fmt.Sprintf("\nregister is %v, not read\n", reading.Register.Access.Label())
	}

	var live strings.Builder

	fmt.Fprintf(&live, "\nvalue:  %#x", reading.Value)
	if reading.Changed() {
		fmt.Fprintf(&live, " [blue](reset %#x)[-]", reading.Register.ResetValue)
	}
	fmt.Fprintf(&live, "\nbinary: %v\n", utils.FormatUintBinary(reading.Value, int(reading.Register.Size)))

	for _, field := range reading.Fields {
		if field.Changed() {
			fmt.Fprintf(&live, "  [blue]%v=%#x[-]\n", field.Label(), field.Value)
		} else {
			fmt.Fprintf(&live, "  %v=%#x\n", field.Label(), field.Value)
		}
	}

	return text + live.String()
}

func runBrowse(device *regmap.Device, session *target.Session) error {
	app := tview.NewApplication()

	detail := tview.NewTextView()
	detail.SetDynamicColors(true)
	detail.SetWrap(true)
	detail.SetBorder(true)
	detail.SetTitle(" details ")

	root := tview.NewTreeNode(device.Name)
	for _, peripheral := range device.Peripherals {
		peripheralNode := tview.NewTreeNode(peripheral.Name).
			SetReference(peripheral).
			SetExpanded(false)

		for _, register := range peripheral.Registers {
			peripheralNode.AddChild(tview.NewTreeNode(register.Name).SetReference(register))
		}

		root.AddChild(peripheralNode)
	}

	tree := tview.NewTreeView().SetRoot(root).SetCurrentNode(root)
	tree.SetBorder(true)
	tree.SetTitle(fmt.Sprintf(" %v ", device.Name))

	tree.SetChangedFunc(func(node *tview.TreeNode) {
		switch entity := node.GetReference().(type) {
		case *regmap.Peripheral:
			detail.SetText(peripheralDetailText(entity))
		case *regmap.Register:
			detail.SetText(registerDetailText(entity))
		default:
			detail.SetText(fmt.Sprintf("[yellow]%v[-]\n\n%v\n", device.Name, device.Description))
		}
	})

	tree.SetSelectedFunc(func(node *tview.TreeNode) {
		switch entity := node.GetReference().(type) {
		case *regmap.Peripheral:
			node.SetExpanded(!node.IsExpanded())
		case *regmap.Register:
			if session == nil {
				detail.SetText(registerDetailText(entity) + "\n(not connected)\n")
				return
			}
			detail.SetText(readingDetailText(session.ReadRegister(entity)))
		default:
			node.SetExpanded(!node.IsExpanded())
		}
	})

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return event
	})

	layout := tview.NewFlex().
		AddItem(tree, 0, 1, true).
		AddItem(detail, 0, 2, false)

	return app.SetRoot(layout, true).Run()
}
