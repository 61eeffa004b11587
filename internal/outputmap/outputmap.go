// Package outputmap builds the output file map declaring every
// artifact path the compiler must produce, for the module and for each
// source unit.
//
// The record shapes differ between whole-module-optimization and
// incremental mode, so each shape is its own type rather than one
// struct with optional fields; the two modes cannot be mixed by
// construction.
package outputmap

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/swiftbuild/swiftwrap/internal/config"
	"github.com/swiftbuild/swiftwrap/internal/fileutil"
)

// ModuleKey is the map key for the module-level record.
const ModuleKey = ""

// Fragment is one record of the output file map.
type Fragment interface {
	// DependencyFile returns the dependency fragment path the compiler
	// writes for this record, or empty if the record declares none.
	DependencyFile() string

	isFragment()
}

// wholeModuleFragment is the module record in whole-module mode: the
// single translation unit carries the dependency and diagnostics
// outputs. Fields stay in key order so serialization matches the
// sorted-key JSON the build graph compares.
type wholeModuleFragment struct {
	ConstValues       string `json:"const-values"`
	Dependencies      string `json:"dependencies"`
	Diagnostics       string `json:"diagnostics"`
	SwiftDependencies string `json:"swift-dependencies"`
}

func (f wholeModuleFragment) DependencyFile() string { return f.Dependencies }
func (f wholeModuleFragment) isFragment()            {}

// emitModuleFragment is the module record in incremental mode, where
// module emission runs as its own job.
type emitModuleFragment struct {
	EmitModuleDependencies string `json:"emit-module-dependencies"`
	EmitModuleDiagnostics  string `json:"emit-module-diagnostics"`
	SwiftDependencies      string `json:"swift-dependencies"`
}

func (f emitModuleFragment) DependencyFile() string { return "" }
func (f emitModuleFragment) isFragment()            {}

// objectFragment is a source record in whole-module mode: only the
// object output is per-unit.
type objectFragment struct {
	IndexUnitOutputPath string `json:"index-unit-output-path"`
	Object              string `json:"object"`
}

func (f objectFragment) DependencyFile() string { return "" }
func (f objectFragment) isFragment()            {}

// perFileFragment is a source record in incremental mode, carrying its
// own dependency, diagnostics and incremental-state outputs.
type perFileFragment struct {
	ConstValues         string `json:"const-values"`
	Dependencies        string `json:"dependencies"`
	Diagnostics         string `json:"diagnostics"`
	IndexUnitOutputPath string `json:"index-unit-output-path"`
	Object              string `json:"object"`
	SwiftDependencies   string `json:"swift-dependencies"`
}

func (f perFileFragment) DependencyFile() string { return f.Dependencies }
func (f perFileFragment) isFragment()            {}

// Map is the full output file map, keyed by source path with ModuleKey
// for the module record.
type Map map[string]Fragment

// Build enumerates the outputs for moduleName compiled from sources
// into targetOutDir. Every source must carry the Swift source
// extension; a violation is a caller bug and panics.
//
// Object basenames derive from the source basename alone: all objects
// land flat in targetOutDir. Dependency and diagnostics paths are
// absolute because the compiler may run under a different working
// directory assumption than the depfile normalization that later
// consumes them.
func Build(sources []string, targetOutDir, moduleName string, wholeModule bool) (Map, error) {
	m := Map{}

	module, err := moduleFragment(targetOutDir, moduleName, wholeModule)
	if err != nil {
		return nil, err
	}

	m[ModuleKey] = module

	for _, source := range sources {
		fragment, err := sourceFragment(source, targetOutDir, wholeModule)
		if err != nil {
			return nil, err
		}

		m[source] = fragment
	}

	return m, nil
}

func moduleFragment(targetOutDir, moduleName string, wholeModule bool) (Fragment, error) {
	outName, err := filepath.Abs(filepath.Join(targetOutDir, moduleName))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output path for module %s: %w", moduleName, err)
	}

	if wholeModule {
		return wholeModuleFragment{
			ConstValues:       outName + ".swiftconstvalues",
			Dependencies:      outName + ".d",
			Diagnostics:       outName + ".dia",
			SwiftDependencies: outName + ".swiftdeps",
		}, nil
	}

	return emitModuleFragment{
		EmitModuleDependencies: outName + ".d",
		EmitModuleDiagnostics:  outName + ".dia",
		SwiftDependencies:      outName + ".swiftdeps",
	}, nil
}

func sourceFragment(source, targetOutDir string, wholeModule bool) (Fragment, error) {
	if !strings.HasSuffix(source, config.SourceExtension) {
		panic(fmt.Sprintf("source file %s is not a %s file", source, config.SourceExtension))
	}

	basename := strings.TrimSuffix(filepath.Base(source), config.SourceExtension)
	relName := filepath.Join(targetOutDir, basename)

	outName, err := filepath.Abs(relName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output path for %s: %w", source, err)
	}

	indexPath := "/" + filepath.ToSlash(relName) + ".o"

	if wholeModule {
		return objectFragment{
			IndexUnitOutputPath: indexPath,
			Object:              outName + ".o",
		}, nil
	}

	return perFileFragment{
		ConstValues:         outName + ".swiftconstvalues",
		Dependencies:        outName + ".d",
		Diagnostics:         outName + ".dia",
		IndexUnitOutputPath: indexPath,
		Object:              outName + ".o",
		SwiftDependencies:   outName + ".swiftdeps",
	}, nil
}

// DependencyFiles returns the dependency fragment paths declared by
// the map, sorted for deterministic processing.
func (m Map) DependencyFiles() []string {
	var paths []string

	for _, fragment := range m {
		if path := fragment.DependencyFile(); path != "" {
			paths = append(paths, path)
		}
	}

	sort.Strings(paths)

	return paths
}

// WriteFile serializes the map as deterministic JSON (sorted keys) and
// writes it through the conditional writer so an unchanged map does
// not retrigger the compiler's dependents.
func (m Map) WriteFile(path string) error {
	data, err := json.MarshalIndent(m, "", " ")
	if err != nil {
		return fmt.Errorf("failed to serialize output file map: %w", err)
	}

	return fileutil.WriteIfChanged(path, append(data, '\n'))
}
