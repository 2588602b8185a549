package model

// Variant identifies which retrieval strategy produced the context a
// question was generated from.
type Variant string

const (
	VariantBaseline Variant = "baseline"
	VariantGraphRAG Variant = "graphrag"
)

// Variants lists all experiment variants in run order.
var Variants = []Variant{VariantBaseline, VariantGraphRAG}

// Question is the structured output of the question-generation collaborator.
type Question struct {
	Text           string   `json:"question"`
	Choices        []string `json:"choices,omitempty"`
	ExpectedAnswer string   `json:"correct_answer"`
	Rationale      string   `json:"rationale,omitempty"`
}
