package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultSwiftVersion = "5"
	DefaultVerbose      = false
)

// SourceExtension is the only extension accepted for source units.
const SourceExtension = ".swift"

// Holds the configuration options for one build step
type Config struct {
	// Name of the Swift module being compiled
	ModuleName string

	// Path to the source directory
	SrcDir string

	// Directory receiving object files and the module artifact
	TargetOutDir string

	// Path to the generated Objective-C interface header
	HeaderPath string

	// Path to the Objective-C bridge header, if any
	BridgeHeader string

	// Path to the final normalized depfile
	DepfilePath string

	// Persistent derived data root; empty means a throwaway cache
	DerivedDataDir string

	// Target triple to generate code for
	TargetTriple string

	// Path to the SDK
	SDKPath string

	// Path to the file listing const value gathering protocols
	ConstGatherProtocolsFile string

	// Explicit Swift toolchain path; discovered beside the SDK if empty
	SwiftToolchainPath string

	// Header and framework search paths, forwarded to the compiler
	IncludeDirs         []string
	SystemIncludeDirs   []string
	FrameworkDirs       []string
	SystemFrameworkDirs []string

	// Preprocessor defines
	Defines []string

	// Swift language version
	SwiftVersion string

	// Compile all sources as a single translation unit
	WholeModuleOptimization bool

	// Rewrite @import to #import in the generated header
	FixModuleImports bool

	// Compilation directory to embed in debug info
	FileCompilationDir string

	// Worker count hint passed to the compiler
	NumThreads int

	// Enable verbose output
	Verbose bool

	// Source units to compile
	Sources []string

	// Extra arguments forwarded verbatim to the compiler
	ExtraArgs []string
}

func Load() (*Config, error) {
	cfg := &Config{
		ModuleName:               viper.GetString("module_name"),
		SrcDir:                   viper.GetString("src_dir"),
		TargetOutDir:             viper.GetString("target_out_dir"),
		HeaderPath:               viper.GetString("header_path"),
		BridgeHeader:             viper.GetString("bridge_header"),
		DepfilePath:              viper.GetString("depfile_path"),
		DerivedDataDir:           viper.GetString("derived_data_dir"),
		TargetTriple:             viper.GetString("target"),
		SDKPath:                  viper.GetString("sdk"),
		ConstGatherProtocolsFile: viper.GetString("const_gather_protocols_file"),
		SwiftToolchainPath:       viper.GetString("swift_toolchain_path"),
		IncludeDirs:              viper.GetStringSlice("include_dirs"),
		SystemIncludeDirs:        viper.GetStringSlice("system_include_dirs"),
		FrameworkDirs:            viper.GetStringSlice("framework_dirs"),
		SystemFrameworkDirs:      viper.GetStringSlice("system_framework_dirs"),
		Defines:                  viper.GetStringSlice("defines"),
		SwiftVersion:             viper.GetString("swift_version"),
		WholeModuleOptimization:  viper.GetBool("whole_module_optimization"),
		FixModuleImports:         viper.GetBool("fix_module_imports"),
		FileCompilationDir:       viper.GetString("file_compilation_dir"),
		NumThreads:               viper.GetInt("num_threads"),
		Verbose:                  viper.GetBool("verbose"),
	}

	if cfg.SwiftVersion == "" {
		cfg.SwiftVersion = DefaultSwiftVersion
	}

	if cfg.NumThreads <= 0 {
		cfg.NumThreads = DefaultNumThreads()
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"module-name", c.ModuleName},
		{"src-dir", c.SrcDir},
		{"target-out-dir", c.TargetOutDir},
		{"header-path", c.HeaderPath},
		{"depfile-path", c.DepfilePath},
		{"target", c.TargetTriple},
		{"sdk", c.SDKPath},
	}

	for _, field := range required {
		if field.value == "" {
			return fmt.Errorf("required option --%s not specified", field.name)
		}
	}

	if len(c.Sources) == 0 {
		return fmt.Errorf("no source files specified")
	}

	for _, source := range c.Sources {
		if !strings.HasSuffix(source, SourceExtension) {
			return fmt.Errorf("source file %s must have %s extension", source, SourceExtension)
		}
	}

	// Resolve the source root; search paths stay as given since they
	// are forwarded to the compiler relative to the build directory.
	abs, err := filepath.Abs(c.SrcDir)
	if err != nil {
		return fmt.Errorf("invalid source directory: %v", err)
	}

	c.SrcDir = abs

	return nil
}

// DefaultNumThreads mirrors the compiler worker heuristic: half the
// CPUs, at least one.
func DefaultNumThreads() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}

	return n
}
