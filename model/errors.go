package model

import "fmt"

// MalformedChunkError reports a chunk missing required fields. The build
// skips the chunk and continues; it never aborts the whole build.
type MalformedChunkError struct {
	Index  int
	Reason string
}

func (e *MalformedChunkError) Error() string {
	return fmt.Sprintf("malformed chunk %d: %s", e.Index, e.Reason)
}

// ConfigurationError reports an invalid weight sum or invalid retriever
// parameters. It is fatal and aborts before any topic runs.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// GenerationError reports that the question-generation collaborator failed
// or returned unusable output. It aborts that single (topic, variant) run;
// remaining topics continue.
type GenerationError struct {
	Topic   string
	Variant Variant
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("question generation failed for %q (%s): %v", e.Topic, e.Variant, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// JudgmentFormatError reports an out-of-range or non-numeric judgment
// response. The evaluator clamps the carried value to [0,1] (a NaN value
// defaults to 0), flags the criterion and logs; it never crashes the run.
type JudgmentFormatError struct {
	Criterion Criterion
	Raw       string
	Value     float64
}

func (e *JudgmentFormatError) Error() string {
	return fmt.Sprintf("judgment for %s not a float in [0,1]: %q", e.Criterion, e.Raw)
}
