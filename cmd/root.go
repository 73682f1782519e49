package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "svd-tools",
	Short: "Inspect and modify peripheral registers of a device under debug",
	Long: `svd-tools reads the CMSIS-SVD description of a microcontroller and uses it
to inspect and modify the peripheral registers of a live target through a
debug monitor (OpenOCD, an ST-style gdbserver, or anything answering plain
gdb memory commands).

Peripherals, registers and fields are addressed by name, and any unambiguous
prefix of a name works: 'get GPIOA MOD' reads GPIOA's MODER register.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupColors()
		setupLogging()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.svd-tools.yaml)")
	RootCmd.PersistentFlags().StringP("svd", "s", "", "SVD description file of the target device")
	RootCmd.PersistentFlags().StringP("connect", "C", "localhost:4444", "address of the debug monitor console")
	RootCmd.PersistentFlags().String("dialect", "", "yaml file overriding the monitor command templates")
	RootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	RootCmd.PersistentFlags().String("log-file", "", "append structured json logs to this file")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "log monitor commands and replies")

	viper.BindPFlag("svd", RootCmd.PersistentFlags().Lookup("svd"))
	viper.BindPFlag("connect", RootCmd.PersistentFlags().Lookup("connect"))
	viper.BindPFlag("dialect", RootCmd.PersistentFlags().Lookup("dialect"))
	viper.BindPFlag("no-color", RootCmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("log-file", RootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".svd-tools" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".svd-tools")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setupColors() {
	if viper.GetBool("no-color") {
		color.NoColor = true
	}
}

// setupLogging points the default slog logger at the console and, when a
// log file is configured, at a json file handler as well. The console
// stays quiet unless --verbose is given, the file always gets the full
// debug stream.
func setupLogging() {
	consoleLevel := slog.LevelWarn
	if viper.GetBool("verbose") {
		consoleLevel = slog.LevelDebug
	}

	console := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: consoleLevel})
	handler := slog.Handler(console)

	if path := viper.GetString("log-file"); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		cobra.CheckErr(err)

		handler = slogmulti.Fanout(
			console,
			slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	slog.SetDefault(slog.New(handler))
}
