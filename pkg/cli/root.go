package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version = "0.3.0"
	cfgFile string
	rootDir string
	verbose bool
	silent  bool
)

var rootCmd = &cobra.Command{
	Use:   "quasar",
	Short: "Quasar - observable state stores for small widget views",
	Long: `Quasar drives the counter, todo and followers stores from the terminal
and can stream their state to websocket inspectors.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "project root directory")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&silent, "silent", false, "disable all logging")
}
