package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/depocite/internal/model"
)

// version is overridden at build time with -ldflags "-X"
var version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "depocite",
	Short: "Depocite - link deposition summary citations to transcript text",
	Long: `Depocite resolves the page/line citations in a deposition summary, such as
(9:1-24:11), 37:22-24 or (126-127, 139-142), against the transcript they
refer to.

Every cited range is paired with the exact transcript text it points at,
and every numbered transcript line no citation covers is grouped into an
uncited section, so a reviewer can see what the summary leaves out.

Depocite matches citations by page and line number only. It does not judge
whether a citation supports the statement it follows.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Depocite.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("depocite %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.depocite/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := registerDefaults(model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to register config defaults: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".depocite"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match DEPOCITE_*, e.g. DEPOCITE_CACHE_ENABLED
	viper.SetEnvPrefix("DEPOCITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	} else if err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: failed to read config %s: %v\n", cfgFile, err)
	}
}

// registerDefaults makes every config key known to viper so environment
// variables resolve even when no config file sets them
func registerDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}

	for section, values := range tree {
		fields, ok := values.(map[string]any)
		if !ok {
			viper.SetDefault(section, values)
			continue
		}
		for key, v := range fields {
			viper.SetDefault(section+"."+key, v)
		}
	}
	return nil
}

// loadConfig returns the effective configuration: defaults overlaid with
// the config file and DEPOCITE_* environment variables
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = model.DefaultConfig().Cache.Dir
	}
	return cfg, nil
}
