package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taxdraft/ocr-tax-extraction/dto"
	"github.com/taxdraft/ocr-tax-extraction/utils"
)

func field(key string, value interface{}, confidence float64) dto.ExtractedField {
	return dto.ExtractedField{Key: key, Label: key, Value: value, Confidence: confidence}
}

func TestDampByClassification(t *testing.T) {
	fields := []dto.ExtractedField{field("wages", 1000.0, 0.8)}

	DampByClassification(fields, 0.5)

	assert.InDelta(t, 0.4, fields[0].Confidence, 0.001)
}

func TestDampByClassificationSkippedWhenConfident(t *testing.T) {
	fields := []dto.ExtractedField{field("wages", 1000.0, 0.8)}

	DampByClassification(fields, 0.9)

	assert.Equal(t, 0.8, fields[0].Confidence)
}

func TestDampByClassificationFloor(t *testing.T) {
	fields := []dto.ExtractedField{field("wages", 1000.0, 0.4)}

	DampByClassification(fields, 0.1)

	assert.Equal(t, 0.1, fields[0].Confidence)
}

func TestPostProcessWithholdingTooHigh(t *testing.T) {
	fields := []dto.ExtractedField{
		field("wages", 1000.0, 0.9),
		field("federalTaxWithheld", 600.0, 0.9),
	}
	rules := []utils.WithholdingRule{{WithholdingKey: "federalTaxWithheld", GrossKey: "wages"}}

	PostProcess(fields, rules, 0.9)

	withheld := fields[1]
	assert.InDelta(t, 0.5, withheld.Confidence, 0.001)
	assert.Contains(t, withheld.Label, "(Unusually High - Please Verify)")
	assert.Contains(t, withheld.Label, "(Needs Review)")
}

func TestPostProcessWithholdingFloor(t *testing.T) {
	fields := []dto.ExtractedField{
		field("wages", 1000.0, 0.9),
		field("federalTaxWithheld", 900.0, 0.5),
	}
	rules := []utils.WithholdingRule{{WithholdingKey: "federalTaxWithheld", GrossKey: "wages"}}

	PostProcess(fields, rules, 0.9)

	assert.Equal(t, 0.3, fields[1].Confidence)
}

func TestPostProcessPlausibleWithholdingUntouched(t *testing.T) {
	fields := []dto.ExtractedField{
		field("wages", 1000.0, 0.9),
		field("federalTaxWithheld", 200.0, 0.9),
	}
	rules := []utils.WithholdingRule{{WithholdingKey: "federalTaxWithheld", GrossKey: "wages"}}

	PostProcess(fields, rules, 0.9)

	assert.Equal(t, 0.9, fields[1].Confidence)
	assert.NotContains(t, fields[1].Label, "Unusually High")
}

func TestPostProcessSourceQualityPenalty(t *testing.T) {
	fields := []dto.ExtractedField{field("wages", 1000.0, 0.8)}

	PostProcess(fields, nil, 0.5)

	assert.InDelta(t, 0.6, fields[0].Confidence, 0.001)
	assert.Contains(t, fields[0].Label, "(Needs Review)")
}

func TestPostProcessSourceQualityFloor(t *testing.T) {
	fields := []dto.ExtractedField{field("wages", 1000.0, 0.15)}

	PostProcess(fields, nil, 0.5)

	assert.Equal(t, 0.1, fields[0].Confidence)
}

func TestPostProcessNegativeValuePenalty(t *testing.T) {
	fields := []dto.ExtractedField{field("adjustment", -250.0, 0.8)}

	PostProcess(fields, nil, 0.9)

	assert.InDelta(t, 0.5, fields[0].Confidence, 0.001)
	assert.Contains(t, fields[0].Label, "(Needs Review)")
}

func TestPostProcessReviewAnnotationIdempotent(t *testing.T) {
	fields := []dto.ExtractedField{field("wages", 1000.0, 0.5)}

	PostProcess(fields, nil, 0.9)
	labelAfterFirst := fields[0].Label
	PostProcess(fields, nil, 0.9)

	assert.Equal(t, labelAfterFirst, fields[0].Label)
}

func TestPostProcessConfidentFieldUnannotated(t *testing.T) {
	fields := []dto.ExtractedField{field("wages", 1000.0, 0.9)}

	PostProcess(fields, nil, 0.9)

	assert.Equal(t, 0.9, fields[0].Confidence)
	assert.NotContains(t, fields[0].Label, "Needs Review")
}
