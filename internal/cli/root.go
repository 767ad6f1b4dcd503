// Package cli wires the flask-upgrade command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	verbose      bool
	quiet        bool
	noTeardown   bool
	allTemplates bool
	showProgress bool
	watchFlag    bool
)

// rootCmd is the base command; running it performs the upgrade scan.
var rootCmd = &cobra.Command{
	Use:   "flask-upgrade [path...]",
	Short: "Emit a unified diff upgrading a Flask application to the 0.7 API",
	Long: `flask-upgrade scans an application tree and prints a unified diff with the
changes needed to move to the Flask 0.7 API without deprecation warnings:

  - Module declarations become Blueprint declarations, including their
    imports and qualified uses
  - Endpoint references in url_for calls are normalized to the
    blueprint-relative form
  - after_request handlers that provably pass their response through
    unchanged are demoted to teardown_request handlers

Files are never modified; review the diff and apply it with your patch tool
of choice. Constructs the tool cannot fully analyze are left untouched.

Examples:
  # Scan the current directory
  flask-upgrade

  # Scan two trees, skipping teardown detection
  flask-upgrade -T ./app ./lib

  # Re-emit patches as files change
  flask-upgrade --watch
`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runUpgrade,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.flask-upgrade.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.Flags().BoolVarP(&noTeardown, "no-teardown-detection", "T", false,
		"do not attempt to detect teardown function rewrites")
	rootCmd.Flags().BoolVar(&allTemplates, "all-templates", false,
		"treat every non-source file as a template instead of requiring a template marker")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "disable non-error output on stderr")
	rootCmd.Flags().BoolVar(&showProgress, "progress", false, "show a progress bar on stderr")
	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false,
		"after the initial scan, watch for changes and re-emit patches")

	viper.BindPFlag("templates.all", rootCmd.Flags().Lookup("all-templates"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".flask-upgrade")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
