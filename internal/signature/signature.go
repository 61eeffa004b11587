// Package signature derives the build signature that names a derived
// data cache generation.
package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Toolchain-root variable always included in the signature.
const developerDirVar = "DEVELOPER_DIR"

// Suffix marking environment variables that describe tool versions.
const versionSuffix = "_VERSION"

// Compute returns the build signature for an environment snapshot and
// the full argument vector.
//
// Only environment variables whose name ends in _VERSION, plus
// DEVELOPER_DIR, participate: those capture toolchain identity, while
// everything else (TERM, session variables, ...) would churn the
// signature without affecting compiler output. Arguments are hashed
// positionally without filtering, so any change to the invocation
// rotates the cache generation.
func Compute(env map[string]string, args []string) string {
	h := sha256.New()

	keys := make([]string, 0, len(env))
	for key := range env {
		if strings.HasSuffix(key, versionSuffix) || key == developerDirVar {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(h, "%s=%s", key, env[key])
	}

	for i, arg := range args {
		fmt.Fprintf(h, "%d=%s", i, arg)
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Environ snapshots the process environment into the map form Compute
// expects, keeping the signature testable with synthetic environments.
func Environ() map[string]string {
	env := make(map[string]string)

	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			env[key] = value
		}
	}

	return env
}
