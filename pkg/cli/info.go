package cli

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/withgalaxy/quasar/pkg/config"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display environment information",
	Long:  `Display useful information about your current Quasar setup`,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Quasar                   v%s\n", Version)
	fmt.Fprintf(out, "Go                       %s\n", runtime.Version())
	fmt.Fprintf(out, "System                   %s (%s)\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "Working Directory        %s\n", a.root)

	configPath := cfgFile
	if configPath == "" {
		configPath = filepath.Join(a.root, config.FileName)
	}
	if fileExists(configPath) {
		fmt.Fprintf(out, "Config                   %s\n", configPath)
	}

	fmt.Fprintf(out, "Log                      %s (%s)\n", a.cfg.Log.Env, a.cfg.Log.Level)
	fmt.Fprintf(out, "Devtools                 ws://%s%s\n", a.cfg.DevtoolsAddr(), a.cfg.Devtools.Path)

	if seed := config.ResolvePath(a.root, a.cfg.Todo.SeedFile); seed != "" && fileExists(seed) {
		fmt.Fprintf(out, "Todo Seed                %s\n", seed)
	}

	if fixture := config.ResolvePath(a.root, a.cfg.Followers.Fixture); fixture != "" && fileExists(fixture) {
		fmt.Fprintf(out, "Followers Fixture        %s\n", fixture)
	}

	return nil
}
