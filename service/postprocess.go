package service

import (
	"strings"

	"github.com/taxdraft/ocr-tax-extraction/dto"
	"github.com/taxdraft/ocr-tax-extraction/utils"
)

const (
	confidenceFloor = 0.1
	confidenceCeil  = 1.0

	classificationDampingThreshold = 0.8

	crossFieldPenalty = 0.4
	crossFieldFloor   = 0.3
	crossFieldRatio   = 0.5

	sourceQualityThreshold = 0.8
	sourceQualityPenalty   = 0.2

	negativeValuePenalty = 0.3

	needsReviewThreshold = 0.7

	needsReviewSuffix   = " (Needs Review)"
	unusuallyHighSuffix = " (Unusually High - Please Verify)"
)

// DampByClassification multiplies every field's confidence by the
// classification confidence when the classifier was not sure of the type.
func DampByClassification(fields []dto.ExtractedField, classConfidence float64) {
	if classConfidence >= classificationDampingThreshold {
		return
	}
	for i := range fields {
		fields[i].Confidence = clampConfidence(fields[i].Confidence*classConfidence, confidenceFloor)
	}
}

// PostProcess runs the cross-field sanity checks and confidence propagation
// that follow parsing: withholding plausibility, source-quality damping,
// negative-value penalty, and the needs-review annotation. Confidence stays
// inside [0.1, 1.0] throughout; it is never driven to exactly zero.
func PostProcess(fields []dto.ExtractedField, rules []utils.WithholdingRule, sourceConfidence float64) {
	applyWithholdingRules(fields, rules)

	if sourceConfidence < sourceQualityThreshold {
		for i := range fields {
			fields[i].Confidence = clampConfidence(fields[i].Confidence-sourceQualityPenalty, confidenceFloor)
		}
	}

	for i := range fields {
		if v, ok := fields[i].Value.(float64); ok && v < 0 {
			fields[i].Confidence = clampConfidence(fields[i].Confidence-negativeValuePenalty, confidenceFloor)
		}
	}

	for i := range fields {
		if fields[i].Confidence < needsReviewThreshold &&
			!strings.Contains(fields[i].Label, needsReviewSuffix) {
			fields[i].Label += needsReviewSuffix
		}
	}
}

// applyWithholdingRules flags withholding amounts that exceed half of their
// gross counterpart; real withholding rarely does, so the value is suspect.
func applyWithholdingRules(fields []dto.ExtractedField, rules []utils.WithholdingRule) {
	for _, rule := range rules {
		gross, ok := numericValue(fields, rule.GrossKey)
		if !ok || gross <= 0 {
			continue
		}
		for i := range fields {
			if fields[i].Key != rule.WithholdingKey {
				continue
			}
			withheld, ok := fields[i].Value.(float64)
			if !ok || withheld <= gross*crossFieldRatio {
				continue
			}
			fields[i].Confidence = clampConfidence(fields[i].Confidence-crossFieldPenalty, crossFieldFloor)
			if !strings.Contains(fields[i].Label, unusuallyHighSuffix) {
				fields[i].Label += unusuallyHighSuffix
			}
		}
	}
}

func numericValue(fields []dto.ExtractedField, key string) (float64, bool) {
	for _, f := range fields {
		if f.Key == key {
			v, ok := f.Value.(float64)
			return v, ok
		}
	}
	return 0, false
}

func clampConfidence(v, floor float64) float64 {
	if v < floor {
		return floor
	}
	if v > confidenceCeil {
		return confidenceCeil
	}
	return v
}
