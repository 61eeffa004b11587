package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForBuild loads configuration specifically for build operations.
// Precedence, lowest to highest: defaults, global config, local config
// found near the first source file, command-line flags. Positional
// arguments become the source list; arguments after -- are forwarded
// to the compiler untouched.
func (l *Loader) LoadForBuild(cmd *cobra.Command, args []string) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.loadLocalConfig(args)
	l.bindCommandFlags(cmd)

	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	cfg.Sources, cfg.ExtraArgs = splitSources(cmd, args)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitSources separates source files from passthrough arguments after
// the -- terminator.
func splitSources(cmd *cobra.Command, args []string) ([]string, []string) {
	at := cmd.ArgsLenAtDash()
	if at < 0 {
		return args, nil
	}

	return args[:at], args[at:]
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("swift_version", DefaultSwiftVersion)
	viper.SetDefault("num_threads", DefaultNumThreads())
	viper.SetDefault("verbose", DefaultVerbose)
}

// loadGlobalConfig loads global configuration from the user config dir
func (l *Loader) loadGlobalConfig() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return
	}

	globalDir := filepath.Join(configDir, "swiftwrap")

	for _, ext := range []string{"yml", "yaml", "json", "toml"} {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.ReadInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig loads local configuration from the project directory
func (l *Loader) loadLocalConfig(args []string) {
	if len(args) > 0 {
		absFirstFile, err := filepath.Abs(args[0])
		if err != nil {
			return // silently ignore, Validate will handle the rest
		}

		dir := filepath.Dir(absFirstFile)
		localPath := FindLocalConfig(dir)
		if localPath != "" {
			viper.SetConfigFile(localPath)
			_ = viper.ReadInConfig()
		}
	}
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	bindings := map[string]string{
		"module_name":                 "module-name",
		"src_dir":                     "src-dir",
		"target_out_dir":              "target-out-dir",
		"header_path":                 "header-path",
		"bridge_header":               "bridge-header",
		"depfile_path":                "depfile-path",
		"derived_data_dir":            "derived-data-dir",
		"target":                      "target",
		"sdk":                         "sdk",
		"const_gather_protocols_file": "const-gather-protocols-file",
		"swift_toolchain_path":        "swift-toolchain-path",
		"include_dirs":                "include-dir",
		"system_include_dirs":         "system-include-dir",
		"framework_dirs":              "framework-dir",
		"system_framework_dirs":       "system-framework-dir",
		"defines":                     "define",
		"swift_version":               "swift-version",
		"whole_module_optimization":   "whole-module-optimization",
		"fix_module_imports":          "fix-module-imports",
		"file_compilation_dir":        "file-compilation-dir",
		"num_threads":                 "num-threads",
		"verbose":                     "verbose",
	}

	for key, flag := range bindings {
		if f := cmd.Flags().Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}
