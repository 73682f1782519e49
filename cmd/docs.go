package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var docsCmd = &cobra.Command{
	Use:   "docs <directory>",
	Short: "Generate markdown documentation for the CLI",
	Long: `Writes one markdown page per command into the given directory, creating
it if needed.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(os.MkdirAll(args[0], 0o755))
		cobra.CheckErr(doc.GenMarkdownTree(RootCmd, args[0]))

		colorSuccess.Printf("documentation written to %v\n", args[0])
	},
}

func init() {
	RootCmd.AddCommand(docsCmd)
}
