// Package header rewrites the compiler-generated Objective-C
// interface header for consumers built without Clang module support.
//
// The generated header guards its imports behind
// #if __has_feature(objc_modules) and uses @import with no fallback.
// The rewrite appends an #else branch replacing each `@import Foo;`
// with `#import <Foo/Foo.h>`. This is a pure text transform with no
// ties to the cache or dependency handling.
package header

import (
	"fmt"
	"os"
	"strings"

	"github.com/swiftbuild/swiftwrap/internal/fileutil"
)

const modulesGuard = "#if __has_feature(objc_modules)"

// FixModuleImports reads the generated header at headerPath and writes
// the rewritten header to outputPath through the conditional writer.
func FixModuleImports(headerPath, outputPath string) error {
	data, err := os.ReadFile(headerPath)
	if err != nil {
		return fmt.Errorf("failed to read generated header %s: %w", headerPath, err)
	}

	lines := strings.SplitAfter(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var contents []string

	// Index of the first line inside the guarded section, -1 outside.
	sectionStart := -1
	nesting := 0

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, modulesGuard):
			if sectionStart >= 0 {
				return fmt.Errorf("multiple %s sections in %s", modulesGuard, headerPath)
			}

			sectionStart = len(contents) + 1
			nesting = 1

		case sectionStart >= 0 && strings.HasPrefix(line, "#if"):
			nesting++

		case sectionStart >= 0 && strings.HasPrefix(line, "#endif"):
			if nesting > 1 {
				nesting--
				break
			}

			sectionEnd := len(contents)
			contents = append(contents, "#else\n")

			for _, l := range contents[sectionStart:sectionEnd] {
				if strings.HasPrefix(l, "@import") {
					name := strings.Split(strings.Fields(l)[1], ";")[0]
					// ObjectiveC has no umbrella header; the runtime
					// is already visible without it.
					if name != "ObjectiveC" {
						contents = append(contents, fmt.Sprintf("#import <%s/%s.h>\n", name, name))
					}
				} else {
					contents = append(contents, l)
				}
			}

			sectionStart = -1
		}

		contents = append(contents, line)
	}

	w := fileutil.NewWriter(outputPath)

	for _, line := range contents {
		if _, err := w.WriteString(line); err != nil {
			w.Discard()
			return err
		}
	}

	return w.Commit()
}
