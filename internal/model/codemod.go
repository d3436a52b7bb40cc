package model

// ReviewGuidance tells a reviewer how much scrutiny a codemod's changes need.
type ReviewGuidance string

const (
	// MergeWithoutReview marks changes that are safe to merge as-is.
	MergeWithoutReview ReviewGuidance = "Merge Without Review"
	// MergeAfterReview marks changes that should be read before merging.
	MergeAfterReview ReviewGuidance = "Merge After Review"
	// MergeAfterCursoryReview marks changes that need a quick look.
	MergeAfterCursoryReview ReviewGuidance = "Merge After Cursory Review"
)

// Reference points at external documentation for a codemod.
type Reference struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Metadata describes a codemod.
type Metadata struct {
	Name              string
	Summary           string
	Description       string
	ChangeDescription string
	ReviewGuidance    ReviewGuidance
	References        []Reference
	// RuleIDs are the scanner rule identifiers whose findings drive the codemod.
	RuleIDs []string
}

// Finding is one external scanner result.
type Finding struct {
	RuleID   string
	Path     Path
	Position Position
}
