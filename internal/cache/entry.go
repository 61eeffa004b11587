package cache

import "time"

// Entry records one completed compiler invocation in the ledger
type Entry struct {
	// Signature is the build signature the invocation ran under
	Signature string `json:"signature"`

	// ModuleName is the Swift module that was compiled
	ModuleName string `json:"module_name"`

	// TargetTriple the code was generated for
	TargetTriple string `json:"target_triple"`

	// SourceCount is the number of source units compiled
	SourceCount int `json:"source_count"`

	// WholeModule reports whether whole-module-optimization was on
	WholeModule bool `json:"whole_module"`

	// Timestamp when this entry was recorded
	Timestamp time.Time `json:"timestamp"`

	// Duration of the compiler invocation
	Duration time.Duration `json:"duration"`

	// Success indicates if the build was successful
	Success bool `json:"success"`
}
