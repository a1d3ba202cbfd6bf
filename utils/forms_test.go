package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxdraft/ocr-tax-extraction/dto"
)

func findField(fields []dto.ExtractedField, key string) *dto.ExtractedField {
	for i := range fields {
		if fields[i].Key == key {
			return &fields[i]
		}
	}
	return nil
}

func TestW2Parser(t *testing.T) {
	parser, ok := ParserFor(dto.DocTypeW2)
	require.True(t, ok)

	rec := dto.RecognizedText{Text: `
		Form W-2 Wage and Tax Statement 2024
		Employer's EIN: 12-3456789
		Employee's social security number 987-65-4321
		Box 1 Wages, tips, other compensation $55,000.00
		Box 2 Federal income tax withheld $8,250.00
		Box 3 Social security wages $55,000.00
		Box 4 Social security tax withheld $3,410.00
		Box 16 State wages $55,000.00
		Box 17 State income tax $2,750.00
	`}

	fields := parser.Parse(rec)

	wages := findField(fields, "wages")
	require.NotNil(t, wages)
	assert.Equal(t, 55000.00, wages.Value)
	assert.Equal(t, 0.8, wages.Confidence)

	withheld := findField(fields, "federalTaxWithheld")
	require.NotNil(t, withheld)
	assert.Equal(t, 8250.00, withheld.Value)

	ein := findField(fields, "employerEIN")
	require.NotNil(t, ein)
	assert.Equal(t, "123456789", ein.Value)

	ssn := findField(fields, "employeeSSN")
	require.NotNil(t, ssn)
	assert.Equal(t, "987654321", ssn.Value)

	assert.NotNil(t, findField(fields, "socialSecurityWages"))
	assert.NotNil(t, findField(fields, "stateTaxWithheld"))
}

func TestW2ParserOmitsUnmatchedFields(t *testing.T) {
	parser, _ := ParserFor(dto.DocTypeW2)

	rec := dto.RecognizedText{Text: "Box 1 Wages, tips, other compensation $12,000.00"}
	fields := parser.Parse(rec)

	require.NotNil(t, findField(fields, "wages"))
	assert.Nil(t, findField(fields, "employerEIN"))
	assert.Nil(t, findField(fields, "employeeSSN"))
	for _, f := range fields {
		assert.NotNil(t, f.Value)
	}
}

func Test1099INTParser(t *testing.T) {
	parser, ok := ParserFor(dto.DocType1099INT)
	require.True(t, ok)

	rec := dto.RecognizedText{Text: `
		Form 1099-INT Interest Income 2024
		Payer's TIN: 98-7654321
		Box 1 Interest income $1,432.50
		Box 4 Federal income tax withheld $150.00
	`}

	fields := parser.Parse(rec)

	interest := findField(fields, "interestIncome")
	require.NotNil(t, interest)
	assert.Equal(t, 1432.50, interest.Value)

	tin := findField(fields, "payerTIN")
	require.NotNil(t, tin)
	assert.Equal(t, "987654321", tin.Value)
}

func Test1099DIVParserDropsInconsistentQualified(t *testing.T) {
	parser, ok := ParserFor(dto.DocType1099DIV)
	require.True(t, ok)

	rec := dto.RecognizedText{Text: `
		Form 1099-DIV
		Box 1a Total ordinary dividends $500.00
		Box 1b Qualified dividends $8,000.00
	`}

	fields := parser.Parse(rec)

	require.NotNil(t, findField(fields, "ordinaryDividends"))
	assert.Nil(t, findField(fields, "qualifiedDividends"))
}

func Test1099DIVParserKeepsConsistentQualified(t *testing.T) {
	parser, _ := ParserFor(dto.DocType1099DIV)

	rec := dto.RecognizedText{Text: `
		Form 1099-DIV
		Box 1a Total ordinary dividends $500.00
		Box 1b Qualified dividends $400.00
	`}

	fields := parser.Parse(rec)

	qualified := findField(fields, "qualifiedDividends")
	require.NotNil(t, qualified)
	assert.Equal(t, 400.00, qualified.Value)
}

func Test1098Parser(t *testing.T) {
	parser, ok := ParserFor(dto.DocType1098)
	require.True(t, ok)

	rec := dto.RecognizedText{Text: `
		Form 1098 Mortgage Interest Statement
		Lender's TIN: 11-2233445
		Box 1 Mortgage interest received $9,876.54
		Box 2 Outstanding mortgage principal $310,000.00
		Mortgage origination date: 6/15/2019
	`}

	fields := parser.Parse(rec)

	interest := findField(fields, "mortgageInterestReceived")
	require.NotNil(t, interest)
	assert.Equal(t, 9876.54, interest.Value)

	origination := findField(fields, "mortgageOriginationDate")
	require.NotNil(t, origination)
	assert.Equal(t, "2019-06-15", origination.Value)
}

func TestParserForUnknownType(t *testing.T) {
	_, ok := ParserFor(dto.DocTypeUnknown)
	assert.False(t, ok)
}

func TestW2WithholdingRules(t *testing.T) {
	parser, _ := ParserFor(dto.DocTypeW2)
	rules := parser.Rules()

	require.NotEmpty(t, rules)
	assert.Equal(t, "federalTaxWithheld", rules[0].WithholdingKey)
	assert.Equal(t, "wages", rules[0].GrossKey)
}
