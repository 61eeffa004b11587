package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/swiftbuild/swiftwrap/internal/config"
	"github.com/swiftbuild/swiftwrap/internal/fileutil"
)

// Search-path options forwarded to the compiler, and through -Xcc to
// the embedded Clang instance.
var forwardedPrefixes = []struct {
	dirs   func(cfg *config.Config) []string
	prefix string
}{
	{func(cfg *config.Config) []string { return cfg.IncludeDirs }, "I"},
	{func(cfg *config.Config) []string { return cfg.SystemIncludeDirs }, "isystem"},
	{func(cfg *config.Config) []string { return cfg.FrameworkDirs }, "F"},
	{func(cfg *config.Config) []string { return cfg.SystemFrameworkDirs }, "Fsystem"},
}

// Names of the compiler-internal cache directories kept inside a cache
// generation.
const (
	IndexStoreDir  = "Index.noindex"
	ModuleCacheDir = "ModuleCache.noindex"
	PCHOutputDir   = "PrecompiledHeaders"
)

// BuildArgs assembles the full swiftc argument list for one build
// step. cacheDir is the cache generation the compiler may write its
// index store, module cache and precompiled headers into; the three
// subdirectories are created here because swiftc expects them to
// exist. headerPath is where the generated Objective-C header goes,
// which differs from cfg.HeaderPath when the import rewrite is on.
func BuildArgs(cfg *config.Config, cacheDir, outputFileMapPath, fileListPath, headerPath string) ([]string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	indexStore, err := fileutil.EnsureDirectory(filepath.Join(cacheDir, IndexStoreDir))
	if err != nil {
		return nil, err
	}

	moduleCache, err := fileutil.EnsureDirectory(filepath.Join(cacheDir, ModuleCacheDir))
	if err != nil {
		return nil, err
	}

	pchOutput, err := fileutil.EnsureDirectory(filepath.Join(cacheDir, PCHOutputDir))
	if err != nil {
		return nil, err
	}

	args := []string{
		"-parse-as-library",
		"-module-name", cfg.ModuleName,
		"@" + fileListPath,
		"-sdk", cfg.SDKPath,
		"-target", cfg.TargetTriple,
		"-swift-version", cfg.SwiftVersion,
		"-c",
		"-output-file-map", outputFileMapPath,
		"-save-temps",
		"-no-color-diagnostics",
		"-serialize-diagnostics",
		"-emit-dependencies",
		"-emit-module",
		"-emit-module-path", filepath.Join(cfg.TargetOutDir, cfg.ModuleName+".swiftmodule"),
		"-emit-objc-header",
		"-emit-objc-header-path", headerPath,
		"-working-directory", cwd,
		"-index-store-path", indexStore,
		"-module-cache-path", moduleCache,
		"-pch-output-dir", pchOutput,
	}

	if cfg.BridgeHeader != "" {
		args = append(args, "-import-objc-header", cfg.BridgeHeader)
	}

	if cfg.ConstGatherProtocolsFile != "" {
		args = append(args, "-emit-const-values")
		args = append(args,
			"-Xfrontend", "-const-gather-protocols-file",
			"-Xfrontend", cfg.ConstGatherProtocolsFile,
		)
	}

	for _, forwarded := range forwardedPrefixes {
		var forwardedArgs []string

		if len(forwarded.prefix) == 1 {
			for _, dir := range forwarded.dirs(cfg) {
				forwardedArgs = append(forwardedArgs, "-"+forwarded.prefix+dir)
			}
		} else {
			for _, dir := range forwarded.dirs(cfg) {
				forwardedArgs = append(forwardedArgs, "-"+forwarded.prefix, dir)
			}
		}

		for _, arg := range forwardedArgs {
			args = append(args, arg, "-Xcc", arg)
		}
	}

	for _, define := range cfg.Defines {
		if !strings.Contains(define, "=") {
			args = append(args, "-D", define)
		}

		args = append(args, "-Xcc", "-D"+define)
	}

	if cfg.FileCompilationDir != "" {
		args = append(args, "-file-compilation-dir", cfg.FileCompilationDir)
	}

	if cfg.WholeModuleOptimization {
		args = append(args,
			"-whole-module-optimization",
			"-no-emit-module-separately-wmo",
			"-num-threads", strconv.Itoa(cfg.NumThreads),
		)
	} else {
		args = append(args,
			"-enable-batch-mode",
			"-incremental",
			"-experimental-emit-module-separately",
			"-disable-cmo",
			"-j"+strconv.Itoa(cfg.NumThreads),
		)
	}

	args = append(args, cfg.ExtraArgs...)

	return args, nil
}

// CompilerPath resolves the swiftc binary to invoke. An explicit
// toolchain path wins; otherwise the default Xcode toolchain next to
// the SDK is used when present, falling back to the system swiftc.
func CompilerPath(cfg *config.Config) string {
	toolchain := cfg.SwiftToolchainPath
	if toolchain == "" {
		candidate := filepath.Join(filepath.Dir(cfg.SDKPath), "XcodeDefault.xctoolchain")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			toolchain = candidate
		}
	}

	if toolchain == "" {
		return filepath.Join(string(filepath.Separator), "usr", "bin", "swiftc")
	}

	return filepath.Join(toolchain, "usr", "bin", "swiftc")
}
