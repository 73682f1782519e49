package cmd

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AdronTech/svd-tools/pkg/regmap"
	"github.com/AdronTech/svd-tools/pkg/utils"
)

// modelCandidates returns the names that may follow the already resolved
// arguments: peripherals first, then the registers of the resolved
// peripheral, then the fields of the resolved register.
func modelCandidates(device *regmap.Device, resolved []string) []string {
	switch len(resolved) {
	case 0:
		return utils.Map(device.Peripherals, func(peripheral *regmap.Peripheral) string {
			return peripheral.Name
		})

	case 1:
		peripheral := regmap.Resolve(device.Peripherals, resolved[0])
		if !peripheral.Unique() {
			return nil
		}
		return utils.Map(peripheral.Entity().Registers, func(register *regmap.Register) string {
			return register.Name
		})

	case 2:
		peripheral := regmap.Resolve(device.Peripherals, resolved[0])
		if !peripheral.Unique() {
			return nil
		}
		register := regmap.Resolve(peripheral.Entity().Registers, resolved[1])
		if !register.Unique() {
			return nil
		}
		return utils.Map(register.Entity().Fields, func(field *regmap.Field) string {
			return field.Name
		})
	}

	return nil
}

func filterByPrefix(candidates []string, prefix string) []string {
	matched := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		if len(candidate) >= len(prefix) && strings.EqualFold(candidate[:len(prefix)], prefix) {
			matched = append(matched, candidate)
		}
	}

	sort.Strings(matched)

	return matched
}

// completeModelArgs builds a cobra completion function walking the device
// model up to depth positional arguments deep.
func completeModelArgs(depth int) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) >= depth {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		device, err := loadDevice()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		return filterByPrefix(modelCandidates(device, args), toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}
