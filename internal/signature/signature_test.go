package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Deterministic(t *testing.T) {
	env := map[string]string{
		"SWIFT_VERSION": "5.9",
		"DEVELOPER_DIR": "/Applications/Xcode.app/Contents/Developer",
	}
	args := []string{"--module-name", "Foo", "a.swift"}

	sig1 := Compute(env, args)
	sig2 := Compute(env, args)

	assert.NotEmpty(t, sig1)
	assert.Equal(t, sig1, sig2, "identical inputs should produce identical signatures")
}

func TestCompute_ArgumentChangeRotatesSignature(t *testing.T) {
	env := map[string]string{"SWIFT_VERSION": "5.9"}

	sig1 := Compute(env, []string{"--module-name", "Foo", "a.swift"})
	sig2 := Compute(env, []string{"--module-name", "Foo", "b.swift"})

	assert.NotEqual(t, sig1, sig2, "any argument change should produce a new signature")
}

func TestCompute_ArgumentOrderMatters(t *testing.T) {
	env := map[string]string{}

	sig1 := Compute(env, []string{"a.swift", "b.swift"})
	sig2 := Compute(env, []string{"b.swift", "a.swift"})

	assert.NotEqual(t, sig1, sig2, "arguments are hashed positionally")
}

func TestCompute_IncludedEnvironmentVariables(t *testing.T) {
	args := []string{"a.swift"}

	base := Compute(map[string]string{"SWIFT_VERSION": "5.9"}, args)

	// Changing an included variable changes the signature.
	changed := Compute(map[string]string{"SWIFT_VERSION": "5.10"}, args)
	assert.NotEqual(t, base, changed)

	// DEVELOPER_DIR is included by exact name.
	withDevDir := Compute(map[string]string{
		"SWIFT_VERSION": "5.9",
		"DEVELOPER_DIR": "/opt/xcode",
	}, args)
	assert.NotEqual(t, base, withDevDir)
}

func TestCompute_ExcludedEnvironmentVariablesAreIgnored(t *testing.T) {
	args := []string{"a.swift"}

	sig1 := Compute(map[string]string{
		"SWIFT_VERSION": "5.9",
		"TERM":          "xterm-256color",
	}, args)
	sig2 := Compute(map[string]string{
		"SWIFT_VERSION": "5.9",
		"TERM":          "dumb",
		"SSH_TTY":       "/dev/pts/3",
	}, args)

	assert.Equal(t, sig1, sig2, "irrelevant environment noise must not churn the signature")
}

func TestCompute_EnvironmentIterationOrderIsStable(t *testing.T) {
	// Two maps with the same relevant entries must hash identically
	// regardless of Go map iteration order.
	env1 := map[string]string{
		"CLANG_VERSION": "17",
		"SWIFT_VERSION": "5.9",
	}
	env2 := map[string]string{
		"SWIFT_VERSION": "5.9",
		"CLANG_VERSION": "17",
	}

	assert.Equal(t, Compute(env1, nil), Compute(env2, nil))
}

func TestEnviron_ReturnsSnapshot(t *testing.T) {
	t.Setenv("SWIFTWRAP_TEST_VERSION", "1")

	env := Environ()
	require.NotEmpty(t, env)
	assert.Equal(t, "1", env["SWIFTWRAP_TEST_VERSION"])
}
