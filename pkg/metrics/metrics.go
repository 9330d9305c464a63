// Package metrics computes the input/output token surrogate and
// compression ratio the driver reports after each run (component C11).
// These numbers are user feedback only and never affect pipeline
// correctness or control flow.
package metrics

// Diagnostic is a non-fatal warning recorded during enrichment: a
// per-file IoRead or ParseFailed that degraded one file's definitions
// without aborting the run. Embedding callers that only look at a
// Report (not the logger) can still see what was skipped.
type Diagnostic struct {
	Path    string
	Code    string // xerrors.Code value, kept as a string so pkg/metrics does not import pkg/xerrors
	Message string
}

// Report summarizes one pipeline run's size, in the fixed token
// surrogate used throughout: len_utf8 / 4, rounded to the nearest
// integer.
type Report struct {
	InputTokens  int
	OutputTokens int
	Ratio        float64 // InputTokens / OutputTokens; 0 when OutputTokens is 0
	Diagnostics  []Diagnostic
}

// tokenEstimate applies the fixed surrogate to a UTF-8 byte count.
func tokenEstimate(utf8Bytes int) int {
	return (utf8Bytes + 2) / 4 // integer rounding to nearest, ties away from zero
}

// Compute builds a Report from the total UTF-8 byte length of every
// source file the index referenced and the length of the serialized
// output document.
func Compute(inputBytes, outputBytes int) Report {
	in := tokenEstimate(inputBytes)
	out := tokenEstimate(outputBytes)

	r := Report{InputTokens: in, OutputTokens: out}
	if out != 0 {
		r.Ratio = float64(in) / float64(out)
	}
	return r
}
