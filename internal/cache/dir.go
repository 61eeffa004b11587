// Package cache manages the derived data used across compiler
// invocations.
//
// The derived data root holds at most one cache generation at a time,
// named by the build signature, next to a stamp file named after the
// module. Any other entry under the root is left over from a previous
// signature and is evicted before the compiler runs. When no root is
// configured the generation is a temporary directory removed at the
// end of the build step.
//
// The package also keeps a bbolt-backed ledger of past invocations,
// stored outside the derived data root so it survives eviction.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/swiftbuild/swiftwrap/internal/fileutil"
)

// StampSuffix is appended to the module name to form the stamp file
// recognized by the eviction pass.
const StampSuffix = ".stamp"

// Dir is one cache generation the compiler may write into.
type Dir struct {
	path      string
	ephemeral bool
}

// Path returns the generation directory handed to the compiler.
func (d *Dir) Path() string {
	return d.path
}

// Cleanup removes an ephemeral generation. Persistent generations are
// kept for the next invocation and Cleanup is a no-op. Call it via
// defer so a throwaway cache never outlives its build step.
func (d *Dir) Cleanup() error {
	if !d.ephemeral {
		return nil
	}

	return os.RemoveAll(d.path)
}

// Prepare resolves the cache generation for a signature.
//
// With an empty root it allocates a temporary directory. Otherwise it
// evicts every entry under root that is neither the signature's
// generation nor the module's stamp file, creates the generation
// directory if absent (never truncating an existing one, which is what
// makes incremental reuse work), and writes the stamp file.
func Prepare(root, moduleName, buildSignature string) (*Dir, error) {
	if root == "" {
		path, err := os.MkdirTemp("", "swiftwrap-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create temporary cache directory: %w", err)
		}

		return &Dir{path: path, ephemeral: true}, nil
	}

	stampName := moduleName + StampSuffix

	// The derived data can be quite large, so delete anything owned by
	// an obsolete signature before reusing the root.
	entries, err := os.ReadDir(root)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read cache root %s: %w", root, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == buildSignature || name == stampName {
			continue
		}

		if err := os.RemoveAll(filepath.Join(root, name)); err != nil {
			return nil, fmt.Errorf("failed to evict stale cache entry %s: %w", name, err)
		}
	}

	path, err := fileutil.EnsureDirectory(filepath.Join(root, buildSignature))
	if err != nil {
		return nil, err
	}

	stampPath := filepath.Join(root, stampName)
	if err := fileutil.WriteIfChanged(stampPath, nil); err != nil {
		return nil, err
	}

	return &Dir{path: path}, nil
}
