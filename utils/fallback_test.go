package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxdraft/ocr-tax-extraction/dto"
)

func TestFallbackExtractAssignsLargestAmounts(t *testing.T) {
	rec := dto.RecognizedText{Text: `
		Statement of earnings
		Gross pay $5,250.00
		Deductions $750.00
		Fee $45.00
	`}

	fields := FallbackExtract(rec, false)

	require.Len(t, fields, 2)

	wages := findField(fields, "wages")
	require.NotNil(t, wages)
	assert.Equal(t, 5250.00, wages.Value)
	assert.Equal(t, 0.6, wages.Confidence)

	withheld := findField(fields, "federalTaxWithheld")
	require.NotNil(t, withheld)
	assert.Equal(t, 750.00, withheld.Value)
	assert.Equal(t, 0.6, withheld.Confidence)
}

func TestFallbackExtractFiltersNoise(t *testing.T) {
	rec := dto.RecognizedText{Text: "Item 12.50 and fee $99.99 only"}

	fields := FallbackExtract(rec, false)

	assert.Empty(t, fields)
}

func TestFallbackExtractGenericFields(t *testing.T) {
	rec := dto.RecognizedText{Text: `
		John Smith
		Acme Staffing Partners
		Payment Advice Group
		Fourth Person Here
		Total $2,400.00 balance $180.00
	`}

	fields := FallbackExtract(rec, true)

	names := 0
	amounts := 0
	for _, f := range fields {
		switch {
		case len(f.Key) > 5 && f.Key[:5] == "name_":
			names++
			assert.Equal(t, 0.4, f.Confidence)
		case len(f.Key) > 7 && f.Key[:7] == "amount_":
			amounts++
			assert.Equal(t, 0.5, f.Confidence)
		}
	}
	assert.Equal(t, 3, names)
	assert.Equal(t, 2, amounts)

	amount1 := findField(fields, "amount_1")
	require.NotNil(t, amount1)
	assert.Equal(t, 2400.00, amount1.Value)
}

func TestFallbackExtractGenericWithoutNames(t *testing.T) {
	rec := dto.RecognizedText{Text: "total due $1,500.00"}

	fields := FallbackExtract(rec, true)

	assert.Nil(t, findField(fields, "name_1"))
	require.NotNil(t, findField(fields, "amount_1"))
	require.NotNil(t, findField(fields, "wages"))
}
