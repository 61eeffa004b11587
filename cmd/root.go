package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/swiftbuild/swiftwrap/internal/compiler"
	"github.com/swiftbuild/swiftwrap/internal/config"
	"github.com/swiftbuild/swiftwrap/internal/version"
)

var rootCmd = &cobra.Command{
	Use:          "swiftwrap",
	Short:        "Swift build-step wrapper",
	Long:         `Drives the Swift compiler for a Ninja build and keeps its caches and depfiles incrementally correct`,
	RunE:         runBuild,
	SilenceUsage: true,
	Args:         cobra.ArbitraryArgs,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		// The compiler's own exit status is the build step's exit
		// status, so the build graph sees exactly what swiftc reported.
		var exitErr *compiler.ExitError
		if errors.As(err, &exitErr) && exitErr.Code > 0 {
			os.Exit(exitErr.Code)
		}

		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)

	flags := rootCmd.PersistentFlags()
	flags.String("module-name", "", "Name of the Swift module")
	flags.String("src-dir", "", "Path to the source directory")
	flags.String("target-out-dir", "", "Path to the object directory")
	flags.String("header-path", "", "Path to the generated header file")
	flags.String("bridge-header", "", "Path to the Objective-C bridge header file")
	flags.String("depfile-path", "", "Path to the output dependency file")
	flags.String("derived-data-dir", "", "Path to the derived data directory")
	flags.String("target", "", "Generate code for the given target triple")
	flags.String("sdk", "", "Path to the SDK")
	flags.String("const-gather-protocols-file", "", "Path to file containing const values protocols")
	flags.String("swift-toolchain-path", "", "Path to the Swift toolchain to use")
	flags.StringSliceP("include-dir", "I", []string{}, "Add directory to header search path")
	flags.StringSlice("system-include-dir", []string{}, "Add directory to system header search path")
	flags.StringSliceP("framework-dir", "F", []string{}, "Add directory to framework search path")
	flags.StringSlice("system-framework-dir", []string{}, "Add directory to system framework search path")
	flags.StringSliceP("define", "D", []string{}, "Add preprocessor define")
	flags.String("swift-version", config.DefaultSwiftVersion, "Version of the Swift language")
	flags.Bool("whole-module-optimization", false, "Enable whole module optimisation")
	flags.Bool("fix-module-imports", false, "Fix module imports in generated header")
	flags.String("file-compilation-dir", "", "Compilation directory to embed in debug info")
	flags.Int("num-threads", 0, "Worker count hint for the compiler")
	flags.BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(cacheCmd)

	viper.SetDefault("swift_version", config.DefaultSwiftVersion)
	viper.SetDefault("verbose", config.DefaultVerbose)
}
