package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/swiftbuild/swiftwrap/internal/cache"
	"github.com/swiftbuild/swiftwrap/internal/compiler"
	"github.com/swiftbuild/swiftwrap/internal/config"
	"github.com/swiftbuild/swiftwrap/internal/depfile"
	"github.com/swiftbuild/swiftwrap/internal/fileutil"
	"github.com/swiftbuild/swiftwrap/internal/header"
	"github.com/swiftbuild/swiftwrap/internal/outputmap"
	"github.com/swiftbuild/swiftwrap/internal/signature"
)

var buildCmd = &cobra.Command{
	Use:          "build",
	Short:        "Compile a Swift module",
	Long:         `Compile a Swift module and generate the output file map and normalized depfile for the build graph.`,
	RunE:         runBuild,
	SilenceUsage: true,
}

func runBuild(cmd *cobra.Command, args []string) error {
	// The signature covers the raw argument vector, captured before
	// parsing, so even passthrough arguments rotate the cache.
	buildSignature := signature.Compute(signature.Environ(), os.Args[1:])

	cfg, err := config.NewLoader().LoadForBuild(cmd, args)
	if err != nil {
		return err
	}

	for _, dir := range []string{cfg.TargetOutDir, filepath.Dir(cfg.HeaderPath)} {
		if _, err := fileutil.EnsureDirectory(dir); err != nil {
			return err
		}
	}

	fileListPath, err := writeFileList(cfg)
	if err != nil {
		return err
	}

	m, err := outputmap.Build(cfg.Sources, cfg.TargetOutDir, cfg.ModuleName, cfg.WholeModuleOptimization)
	if err != nil {
		return err
	}

	outputFileMapPath := filepath.Join(cfg.TargetOutDir, cfg.ModuleName+"-OutputFileMap.json")
	if err := m.WriteFile(outputFileMapPath); err != nil {
		return err
	}

	cacheDir, err := cache.Prepare(cfg.DerivedDataDir, cfg.ModuleName, buildSignature)
	if err != nil {
		return err
	}
	defer func() {
		if err := cacheDir.Cleanup(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to clean up cache directory: %v\n", err)
		}
	}()

	// When the import rewrite is on the compiler emits the header into
	// the cache directory and the rewritten copy lands at HeaderPath.
	headerPath := cfg.HeaderPath
	if cfg.FixModuleImports {
		headerPath = filepath.Join(cacheDir.Path(), filepath.Base(cfg.HeaderPath))
	}

	compilerArgs, err := compiler.BuildArgs(cfg, cacheDir.Path(), outputFileMapPath, fileListPath, headerPath)
	if err != nil {
		return err
	}

	compilerPath := compiler.CompilerPath(cfg)

	if cfg.Verbose {
		fmt.Printf("Compiler: %s\nModule: %s\nTarget: %s\nSources: %d\nCommand: %s %s\n",
			compilerPath, cfg.ModuleName, cfg.TargetTriple, len(cfg.Sources),
			compilerPath, strings.Join(compilerArgs, " "))
	}

	start := time.Now()
	runErr := compiler.NewRunner().Run(compilerPath, compilerArgs)

	recordBuild(cfg, buildSignature, time.Since(start), runErr == nil)

	if runErr != nil {
		// Depfile generation must not run against partial compiler
		// output.
		return runErr
	}

	if cfg.FixModuleImports {
		if err := header.FixModuleImports(headerPath, cfg.HeaderPath); err != nil {
			return err
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	return depfile.Generate(depfile.Options{
		DependencyFiles: m.DependencyFiles(),
		SDKPath:         cfg.SDKPath,
		OutDir:          cwd,
		SrcDir:          cfg.SrcDir,
		DepfilePath:     cfg.DepfilePath,
	})
}

// writeFileList writes the sorted source list the compiler reads via
// @file, and returns its path.
func writeFileList(cfg *config.Config) (string, error) {
	path := filepath.Join(cfg.TargetOutDir, cfg.ModuleName+".SwiftFileList")

	sources := make([]string, len(cfg.Sources))
	copy(sources, cfg.Sources)
	sort.Strings(sources)

	w := fileutil.NewWriter(path)
	for _, source := range sources {
		fmt.Fprintln(w, source)
	}

	if err := w.Commit(); err != nil {
		return "", err
	}

	return path, nil
}

// recordBuild stores the invocation outcome in the build ledger.
// Ledger problems are warnings: the build result is already on disk
// and must not be failed retroactively.
func recordBuild(cfg *config.Config, buildSignature string, duration time.Duration, success bool) {
	dir, err := cache.DefaultLedgerDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to record build: %v\n", err)
		return
	}

	ledger, err := cache.OpenLedger(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to record build: %v\n", err)
		return
	}
	defer ledger.Close()

	err = ledger.Record(cache.Entry{
		Signature:    buildSignature,
		ModuleName:   cfg.ModuleName,
		TargetTriple: cfg.TargetTriple,
		SourceCount:  len(cfg.Sources),
		WholeModule:  cfg.WholeModuleOptimization,
		Duration:     duration,
		Success:      success,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to record build: %v\n", err)
	}
}
