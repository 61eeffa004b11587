// Package depfile merges the compiler's per-unit dependency fragments
// into the single depfile the build graph consumes.
//
// Ninja compares depfile paths as strings and never resolves relative
// against absolute, so every path that lives under the build or source
// tree is rewritten relative to the build directory. Paths under the
// real SDK or toolchain location are first rewritten onto the stable
// symlinks next to the SDK, keeping the depfile identical across
// machines whose real toolchain paths differ.
package depfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/swiftbuild/swiftwrap/internal/fileutil"
)

// Options describes one normalization run.
type Options struct {
	// DependencyFiles are the fragment paths declared by the output
	// file map. Every listed file must exist.
	DependencyFiles []string

	// SDKPath anchors the symlink rewrite: when it is a symlink, its
	// sibling symlinks map real toolchain paths back to stable names.
	SDKPath string

	// OutDir is the build's working directory paths are made relative
	// to.
	OutDir string

	// SrcDir is the source root; inputs under it are relativized.
	SrcDir string

	// DepfilePath is the final depfile location.
	DepfilePath string
}

// Generate reads every declared dependency fragment and writes the
// merged, path-normalized depfile. A declared fragment that cannot be
// read is fatal: the compiler did not produce what the output file map
// asked for.
func Generate(opts Options) error {
	links := sdkLinks(opts.SDKPath)

	outDir := opts.OutDir + string(os.PathSeparator)

	srcDir, err := filepath.Abs(opts.SrcDir)
	if err != nil {
		return fmt.Errorf("failed to resolve source directory: %w", err)
	}
	srcDir += string(os.PathSeparator)

	content := map[string]map[string]struct{}{}

	for _, fragment := range opts.DependencyFiles {
		data, err := os.ReadFile(fragment)
		if err != nil {
			return fmt.Errorf("failed to read dependency fragment %s: %w", fragment, err)
		}

		if err := mergeFragment(content, string(data), links, opts.OutDir, outDir, srcDir); err != nil {
			return fmt.Errorf("failed to parse dependency fragment %s: %w", fragment, err)
		}
	}

	w := fileutil.NewWriter(opts.DepfilePath)

	outputs := make([]string, 0, len(content))
	for output := range content {
		outputs = append(outputs, output)
	}
	sort.Strings(outputs)

	for _, output := range outputs {
		inputs := make([]string, 0, len(content[output]))
		for input := range content[output] {
			inputs = append(inputs, input)
		}
		sort.Strings(inputs)

		fmt.Fprintf(w, "%s: %s\n", output, strings.Join(inputs, " "))
	}

	return w.Commit()
}

// mergeFragment folds one fragment's lines into the accumulated
// output → inputs sets.
func mergeFragment(content map[string]map[string]struct{}, data string, links []link, outDir, outPrefix, srcPrefix string) error {
	for _, line := range strings.Split(data, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		output, inputs, ok := strings.Cut(line, " : ")
		if !ok {
			return fmt.Errorf("malformed dependency line %q", line)
		}

		relOutput, err := filepath.Rel(outDir, output)
		if err != nil {
			return err
		}

		set := content[relOutput]
		if set == nil {
			set = map[string]struct{}{}
			content[relOutput] = set
		}

		for _, path := range strings.Fields(inputs) {
			for _, l := range links {
				if strings.HasPrefix(path, l.real) {
					path = l.name + path[len(l.real):]
				}
			}

			if strings.HasPrefix(path, srcPrefix) || strings.HasPrefix(path, outPrefix) {
				rel, err := filepath.Rel(outDir, path)
				if err != nil {
					return err
				}

				path = rel
			}

			set[path] = struct{}{}
		}
	}

	return nil
}

// link maps a resolved toolchain path prefix to its symlink name.
// Both carry a trailing separator so only whole path components match.
type link struct {
	real string
	name string
}

// sdkLinks builds the symlink rewrite table from the siblings of a
// symlinked SDK path. A non-symlink SDK yields no table: on such
// setups toolchain inputs stay machine-absolute, which is accepted
// best-effort behavior.
func sdkLinks(sdkPath string) []link {
	info, err := os.Lstat(sdkPath)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return nil
	}

	linkDir := filepath.Dir(sdkPath)

	entries, err := os.ReadDir(linkDir)
	if err != nil {
		return nil
	}

	var links []link

	for _, entry := range entries {
		linkPath := filepath.Join(linkDir, entry.Name())

		info, err := os.Lstat(linkPath)
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			continue
		}

		real, err := filepath.EvalSymlinks(linkPath)
		if err != nil {
			continue
		}

		links = append(links, link{
			real: real + string(os.PathSeparator),
			name: linkPath + string(os.PathSeparator),
		})
	}

	// ReadDir already sorts by name; keep the table order stable so
	// repeated runs rewrite identically.
	return links
}
