package header

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generatedHeader = `// Generated by Swift
#if __has_feature(objc_modules)
@import Foundation;
@import ObjectiveC;
@import UIKit;
#endif
void foo(void);
`

const rewrittenHeader = `// Generated by Swift
#if __has_feature(objc_modules)
@import Foundation;
@import ObjectiveC;
@import UIKit;
#else
#import <Foundation/Foundation.h>
#import <UIKit/UIKit.h>
#endif
void foo(void);
`

func TestFixModuleImports(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Foo-Swift.h.tmp")
	dst := filepath.Join(dir, "Foo-Swift.h")

	require.NoError(t, os.WriteFile(src, []byte(generatedHeader), 0o644))

	err := FixModuleImports(src, dst)
	require.NoError(t, err)

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, rewrittenHeader, string(content))
}

func TestFixModuleImports_NestedConditionals(t *testing.T) {
	const input = `#if __has_feature(objc_modules)
@import Foundation;
#if TARGET_OS_SIMULATOR
@import Simulator;
#endif
#endif
`

	dir := t.TempDir()
	src := filepath.Join(dir, "in.h")
	dst := filepath.Join(dir, "out.h")
	require.NoError(t, os.WriteFile(src, []byte(input), 0o644))

	err := FixModuleImports(src, dst)
	require.NoError(t, err)

	content, err := os.ReadFile(dst)
	require.NoError(t, err)

	const expected = `#if __has_feature(objc_modules)
@import Foundation;
#if TARGET_OS_SIMULATOR
@import Simulator;
#endif
#else
#import <Foundation/Foundation.h>
#if TARGET_OS_SIMULATOR
#import <Simulator/Simulator.h>
#endif
#endif
`
	assert.Equal(t, expected, string(content))
}

func TestFixModuleImports_NoGuardedSection(t *testing.T) {
	const input = "#import <stdint.h>\nvoid foo(void);\n"

	dir := t.TempDir()
	src := filepath.Join(dir, "in.h")
	dst := filepath.Join(dir, "out.h")
	require.NoError(t, os.WriteFile(src, []byte(input), 0o644))

	err := FixModuleImports(src, dst)
	require.NoError(t, err)

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, input, string(content), "headers without a guarded section pass through unchanged")
}

func TestFixModuleImports_UnchangedOutputNotRewritten(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.h")
	dst := filepath.Join(dir, "out.h")
	require.NoError(t, os.WriteFile(src, []byte(generatedHeader), 0o644))

	require.NoError(t, FixModuleImports(src, dst))

	before, err := os.Stat(dst)
	require.NoError(t, err)

	require.NoError(t, FixModuleImports(src, dst))

	after, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, after.ModTime().Equal(before.ModTime()), "identical rewrite must not touch the output")
}

func TestFixModuleImports_MissingHeaderIsFatal(t *testing.T) {
	dir := t.TempDir()

	err := FixModuleImports(filepath.Join(dir, "missing.h"), filepath.Join(dir, "out.h"))
	assert.Error(t, err)
}
