package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fluxmap/fluxmap/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "fluxmap",
	Short: "Terminal map of a repo-analysis pipeline",
	Long: `Fluxmap renders a live terminal map of an event-driven analysis
pipeline. It consumes NDJSON telemetry from a file or stdin, routes each
event onto a fixed pipeline topology, and animates node state, handover
tokens, and payload flow as it happens.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/fluxmap/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().String("log-level", "", "log level (debug/info/warn/error)")
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/fluxmap")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FLUXMAP")
	// Replace dots with underscores for nested keys in env vars
	// e.g., FLUXMAP_TUI_THEME for tui.theme
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
