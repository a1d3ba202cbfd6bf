package utils

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/taxdraft/ocr-tax-extraction/dto"
)

const (
	fallbackConfidence      = 0.6
	genericNameConfidence   = 0.4
	genericAmountConfidence = 0.5

	// Amounts at or below this are treated as noise (box numbers, years,
	// percentages) rather than dollar figures worth surfacing.
	fallbackNoiseFloor = 100.0

	maxGenericNames = 3
)

var (
	currencyShaped = regexp.MustCompile(`\$\s*\d[\d,]*\.?\d*|\b\d{1,3}(?:,\d{3})+(?:\.\d{2})?\b|\b\d+\.\d{2}\b`)
	capitalizedRun = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)
)

// FallbackExtract is the generic, type-agnostic extractor used when a parser
// yields zero fields or no parser exists for the classified type. It sweeps
// the text for currency-shaped amounts and assigns the largest as wages and
// the second-largest as federal withholding. For unknown documents
// (includeGeneric) it also surfaces capitalized names and every amount at
// visibly lower confidence, so the user always sees something extracted.
func FallbackExtract(rec dto.RecognizedText, includeGeneric bool) []dto.ExtractedField {
	amounts := sweepAmounts(rec.Text)

	var fields []dto.ExtractedField
	if len(amounts) > 0 {
		fields = append(fields, amountField("wages", "Wages (Estimated)", amounts[0], fallbackConfidence))
	}
	if len(amounts) > 1 {
		fields = append(fields, amountField("federalTaxWithheld", "Federal Tax Withheld (Estimated)", amounts[1], fallbackConfidence))
	}

	if !includeGeneric {
		return fields
	}

	names := capitalizedRun.FindAllString(rec.Text, maxGenericNames)
	for i, name := range names {
		fields = append(fields, dto.ExtractedField{
			Key:        fmt.Sprintf("name_%d", i+1),
			Label:      fmt.Sprintf("Name %d", i+1),
			Value:      name,
			Confidence: genericNameConfidence,
			Source:     &dto.FieldSource{Page: 1, BBox: matchBBox(rec.Tokens, name), TextSnippet: name},
		})
	}
	for i, amount := range amounts {
		fields = append(fields, amountField(
			fmt.Sprintf("amount_%d", i+1),
			fmt.Sprintf("Amount %d", i+1),
			amount, genericAmountConfidence))
	}
	return fields
}

// sweepAmounts returns every parseable currency-shaped amount above the noise
// floor, sorted descending.
func sweepAmounts(text string) []float64 {
	var amounts []float64
	for _, raw := range currencyShaped.FindAllString(text, -1) {
		amount, ok := ParseCurrency(raw)
		if !ok || amount <= fallbackNoiseFloor {
			continue
		}
		amounts = append(amounts, amount)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(amounts)))
	return amounts
}

func amountField(key, label string, amount, confidence float64) dto.ExtractedField {
	return dto.ExtractedField{
		Key:        key,
		Label:      label,
		Value:      amount,
		Confidence: confidence,
		Source:     &dto.FieldSource{Page: 1},
	}
}
