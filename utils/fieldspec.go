package utils

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/taxdraft/ocr-tax-extraction/dto"
)

// ValueType selects the coercion applied to a matched capture.
type ValueType string

const (
	ValueCurrency ValueType = "currency"
	ValueText     ValueType = "text"
	ValueSSN      ValueType = "ssn"
	ValueEIN      ValueType = "ein"
	ValueDate     ValueType = "date"
)

// FieldSpec is a declarative description of how to find and coerce one named
// value from recognized text. Patterns are tried in order; the first pattern
// whose capture survives coercion and validation wins.
type FieldSpec struct {
	Key      string
	Label    string
	Patterns []*regexp.Regexp
	Type     ValueType
	Required bool
	Validate func(value interface{}) bool
}

// DefaultFieldConfidence is assigned to every pattern-matched field before
// post-processing adjusts it.
const DefaultFieldConfidence = 0.8

var dateCapture = regexp.MustCompile(`^\s*(\d{1,2})[/-](\d{1,2})[/-](\d{2}|\d{4})\s*$`)

// ExtractField runs the spec's patterns against the full recognized text and
// returns the accepted field, or nil if no pattern produced a usable value.
func ExtractField(spec FieldSpec, rec dto.RecognizedText) *dto.ExtractedField {
	for _, pattern := range spec.Patterns {
		m := pattern.FindStringSubmatch(rec.Text)
		if m == nil {
			continue
		}
		capture := m[0]
		if len(m) > 1 {
			capture = m[1]
		}

		value, ok := CoerceValue(capture, spec.Type)
		if !ok {
			continue
		}
		if spec.Validate != nil && !spec.Validate(value) {
			continue
		}

		return &dto.ExtractedField{
			Key:        spec.Key,
			Label:      spec.Label,
			Value:      value,
			Confidence: DefaultFieldConfidence,
			Source: &dto.FieldSource{
				Page:        1,
				BBox:        matchBBox(rec.Tokens, m[0]),
				TextSnippet: m[0],
			},
		}
	}
	return nil
}

// CoerceValue normalizes a raw capture according to the value type.
// A false return means the capture is unusable and the match is discarded.
func CoerceValue(raw string, t ValueType) (interface{}, bool) {
	switch t {
	case ValueCurrency:
		return ParseCurrency(raw)
	case ValueSSN, ValueEIN:
		return normalizeTaxID(raw)
	case ValueDate:
		return normalizeDate(raw)
	default:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return nil, false
		}
		return trimmed, true
	}
}

// ParseCurrency strips currency punctuation and parses a decimal amount.
func ParseCurrency(raw string) (float64, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "", "\t", "").Replace(raw)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false
	}
	return amount, true
}

// normalizeTaxID strips all non-digit characters and accepts only exact
// 9-digit identifiers (SSN or EIN).
func normalizeTaxID(raw string) (string, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() != 9 {
		return "", false
	}
	return digits.String(), true
}

// normalizeDate accepts M/D/YY or M/D/YYYY (slash or dash) and normalizes to
// YYYY-MM-DD. Two-digit years are assumed to be 2000s.
func normalizeDate(raw string) (string, bool) {
	m := dateCapture.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// matchBBox returns the box of the first recognized token whose text is a
// substring of the matched text, or contains it.
func matchBBox(tokens []dto.TextToken, matched string) *dto.BBox {
	matched = strings.TrimSpace(matched)
	if matched == "" {
		return nil
	}
	for i := range tokens {
		tok := strings.TrimSpace(tokens[i].Text)
		if tok == "" {
			continue
		}
		if strings.Contains(matched, tok) || strings.Contains(tok, matched) {
			box := tokens[i].BBox
			return &box
		}
	}
	return nil
}
