package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		setupViper func()
		check      func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults applied",
			setupViper: func() {
				viper.Reset()
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultSwiftVersion, cfg.SwiftVersion)
				assert.GreaterOrEqual(t, cfg.NumThreads, 1)
				assert.False(t, cfg.WholeModuleOptimization)
			},
		},
		{
			name: "custom values",
			setupViper: func() {
				viper.Reset()
				viper.Set("module_name", "Foo")
				viper.Set("target", "arm64-apple-ios17.0")
				viper.Set("sdk", "sdk/iPhoneSimulator.sdk")
				viper.Set("swift_version", "5.9")
				viper.Set("whole_module_optimization", true)
				viper.Set("num_threads", 8)
				viper.Set("include_dirs", []string{"inc1", "inc2"})
				viper.Set("defines", []string{"DEBUG"})
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "Foo", cfg.ModuleName)
				assert.Equal(t, "arm64-apple-ios17.0", cfg.TargetTriple)
				assert.Equal(t, "5.9", cfg.SwiftVersion)
				assert.True(t, cfg.WholeModuleOptimization)
				assert.Equal(t, 8, cfg.NumThreads)
				assert.Equal(t, []string{"inc1", "inc2"}, cfg.IncludeDirs)
				assert.Equal(t, []string{"DEBUG"}, cfg.Defines)
			},
		},
		{
			name: "non-positive thread count falls back to heuristic",
			setupViper: func() {
				viper.Reset()
				viper.Set("num_threads", -2)
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultNumThreads(), cfg.NumThreads)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			test.setupViper()

			cfg, err := Load()
			require.NoError(t, err)
			test.check(t, cfg)
		})
	}
}

func validConfig() *Config {
	return &Config{
		ModuleName:   "Foo",
		SrcDir:       "../src",
		TargetOutDir: "obj/Foo",
		HeaderPath:   "gen/Foo-Swift.h",
		DepfilePath:  "obj/Foo.d",
		TargetTriple: "arm64-apple-ios17.0",
		SDKPath:      "sdk/iPhoneSimulator.sdk",
		Sources:      []string{"a.swift", "b.swift"},
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	// Source root is resolved to an absolute path.
	assert.True(t, filepath.IsAbs(cfg.SrcDir))
}

func TestValidate_MissingRequiredOptions(t *testing.T) {
	tests := []struct {
		name  string
		unset func(cfg *Config)
	}{
		{"module-name", func(cfg *Config) { cfg.ModuleName = "" }},
		{"src-dir", func(cfg *Config) { cfg.SrcDir = "" }},
		{"target-out-dir", func(cfg *Config) { cfg.TargetOutDir = "" }},
		{"header-path", func(cfg *Config) { cfg.HeaderPath = "" }},
		{"depfile-path", func(cfg *Config) { cfg.DepfilePath = "" }},
		{"target", func(cfg *Config) { cfg.TargetTriple = "" }},
		{"sdk", func(cfg *Config) { cfg.SDKPath = "" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := validConfig()
			test.unset(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.name)
		})
	}
}

func TestValidate_RejectsNonSwiftSources(t *testing.T) {
	cfg := validConfig()
	cfg.Sources = []string{"a.swift", "b.cpp"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.cpp")
}

func TestValidate_RequiresSources(t *testing.T) {
	cfg := validConfig()
	cfg.Sources = nil

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no source files")
}
