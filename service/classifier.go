package service

import (
	"regexp"

	"github.com/taxdraft/ocr-tax-extraction/dto"
)

// DocumentTypeCandidate is one row of the static classification table.
// Adding a supported form type is a new table entry, not classifier code.
type DocumentTypeCandidate struct {
	Type             dto.DocumentType
	FilenamePatterns []*regexp.Regexp
	ContentPatterns  []*regexp.Regexp
	BaseConfidence   float64
}

const (
	// Content matches outweigh filename matches: filenames are
	// user-controlled and unreliable.
	filenameMatchWeight = 0.4
	contentMatchWeight  = 0.6

	// Below this score no candidate is committed to; the document is
	// routed to the generic fallback as unknown.
	classificationFloor = 0.3
	unknownConfidence   = 0.1
)

// Classifier scores candidate document types from the filename and the
// recognized text. It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	candidates []DocumentTypeCandidate
}

func NewClassifier() *Classifier {
	return &Classifier{candidates: defaultCandidates}
}

// NewClassifierWithTable builds a classifier over a caller-supplied table.
func NewClassifierWithTable(candidates []DocumentTypeCandidate) *Classifier {
	return &Classifier{candidates: candidates}
}

// Classify returns the best-scoring candidate type and its confidence, or
// (unknown, 0.1) when no candidate clears the floor. Ties resolve to the
// earlier table entry.
func (c *Classifier) Classify(filename, text string) (dto.DocumentType, float64) {
	bestType := dto.DocTypeUnknown
	bestConfidence := 0.0

	for _, cand := range c.candidates {
		raw := 0.0
		for _, p := range cand.FilenamePatterns {
			if p.MatchString(filename) {
				raw += filenameMatchWeight
			}
		}
		for _, p := range cand.ContentPatterns {
			if p.MatchString(text) {
				raw += contentMatchWeight
			}
		}
		if raw > 1.0 {
			raw = 1.0
		}
		confidence := raw * cand.BaseConfidence
		if confidence > bestConfidence {
			bestConfidence = confidence
			bestType = cand.Type
		}
	}

	if bestConfidence < classificationFloor {
		return dto.DocTypeUnknown, unknownConfidence
	}
	return bestType, bestConfidence
}

func mustCompileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

var defaultCandidates = []DocumentTypeCandidate{
	{
		Type:             dto.DocTypeW2,
		FilenamePatterns: mustCompileAll(`(?i)\bw[-_]?2`, `(?i)wage`),
		ContentPatterns: mustCompileAll(
			`(?i)wage\s+and\s+tax\s+statement`,
			`(?i)form\s+w-?2\b`,
			`(?i)wages,?\s*tips,?\s*other\s*comp`,
		),
		BaseConfidence: 0.9,
	},
	{
		Type:             dto.DocType1099INT,
		FilenamePatterns: mustCompileAll(`(?i)1099[-_ ]?int`, `(?i)interest`),
		ContentPatterns: mustCompileAll(
			`(?i)form\s+1099-?INT\b`,
			`(?i)interest\s+income`,
			`(?i)payer'?s?\s+TIN`,
		),
		BaseConfidence: 0.85,
	},
	{
		Type:             dto.DocType1099DIV,
		FilenamePatterns: mustCompileAll(`(?i)1099[-_ ]?div`, `(?i)dividend`),
		ContentPatterns: mustCompileAll(
			`(?i)form\s+1099-?DIV\b`,
			`(?i)ordinary\s+dividends`,
			`(?i)qualified\s+dividends`,
		),
		BaseConfidence: 0.85,
	},
	{
		Type:             dto.DocType1099NEC,
		FilenamePatterns: mustCompileAll(`(?i)1099[-_ ]?nec`, `(?i)contractor`),
		ContentPatterns: mustCompileAll(
			`(?i)form\s+1099-?NEC\b`,
			`(?i)nonemployee\s+compensation`,
		),
		BaseConfidence: 0.85,
	},
	{
		Type:             dto.DocType1098,
		FilenamePatterns: mustCompileAll(`(?i)\b1098\b`, `(?i)mortgage`),
		ContentPatterns: mustCompileAll(
			`(?i)form\s+1098\b`,
			`(?i)mortgage\s+interest\s+statement`,
			`(?i)mortgage\s+interest\s+received`,
		),
		BaseConfidence: 0.8,
	},
}
