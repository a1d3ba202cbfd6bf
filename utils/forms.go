package utils

import (
	"regexp"

	"github.com/taxdraft/ocr-tax-extraction/dto"
)

// WithholdingRule pairs a withholding field with its gross-amount counterpart
// for the cross-field sanity check.
type WithholdingRule struct {
	WithholdingKey string
	GrossKey       string
}

// FormParser extracts the field set of one form type. The field tables are
// pure data; adding a form type is a new table entry, not new control flow.
type FormParser struct {
	docType dto.DocumentType
	specs   []FieldSpec
	rules   []WithholdingRule
	// postParse optionally reconciles fields that are only meaningful
	// relative to each other (e.g. qualified vs ordinary dividends).
	postParse func(fields []dto.ExtractedField) []dto.ExtractedField
}

// Type returns the document type this parser handles.
func (p *FormParser) Type() dto.DocumentType { return p.docType }

// Specs returns the parser's field table in declaration order.
func (p *FormParser) Specs() []FieldSpec { return p.specs }

// Rules returns the cross-field withholding checks for this form type.
func (p *FormParser) Rules() []WithholdingRule { return p.rules }

// Parse executes the field table against the recognized text. Fields that
// fail to match, coerce, or validate are omitted, never emitted as nil.
func (p *FormParser) Parse(rec dto.RecognizedText) []dto.ExtractedField {
	var fields []dto.ExtractedField
	for _, spec := range p.specs {
		if f := ExtractField(spec, rec); f != nil {
			fields = append(fields, *f)
		}
	}
	if p.postParse != nil {
		fields = p.postParse(fields)
	}
	return fields
}

// ParserFor looks up the parser for a classified document type.
// Unknown types resolve to no parser; callers take the fallback path.
func ParserFor(t dto.DocumentType) (*FormParser, bool) {
	p, ok := registry[t]
	return p, ok
}

func currencySpec(key, label string, patterns ...string) FieldSpec {
	return FieldSpec{Key: key, Label: label, Patterns: compile(patterns), Type: ValueCurrency}
}

func compile(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

var registry = map[dto.DocumentType]*FormParser{
	dto.DocTypeW2:      w2Parser,
	dto.DocType1099INT: int1099Parser,
	dto.DocType1099DIV: div1099Parser,
	dto.DocType1099NEC: nec1099Parser,
	dto.DocType1098:    mortgage1098Parser,
}

var w2Parser = &FormParser{
	docType: dto.DocTypeW2,
	specs: []FieldSpec{
		{
			Key:   "wages",
			Label: "Wages, Tips, Other Compensation",
			Patterns: compile([]string{
				`(?i)box\s*1\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
				`(?i)wages,?\s*tips,?\s*other\s*comp(?:ensation)?[^\d$]*\$?\s*([\d,]+\.?\d*)`,
			}),
			Type:     ValueCurrency,
			Required: true,
		},
		{
			Key:   "federalTaxWithheld",
			Label: "Federal Income Tax Withheld",
			Patterns: compile([]string{
				`(?i)box\s*2\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
				`(?i)federal\s*income\s*tax\s*withheld[^\d$]*\$?\s*([\d,]+\.?\d*)`,
			}),
			Type:     ValueCurrency,
			Required: true,
		},
		currencySpec("socialSecurityWages", "Social Security Wages",
			`(?i)box\s*3\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)social\s*security\s*wages[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		currencySpec("socialSecurityTaxWithheld", "Social Security Tax Withheld",
			`(?i)box\s*4\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)social\s*security\s*tax\s*withheld[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		currencySpec("medicareWages", "Medicare Wages and Tips",
			`(?i)box\s*5\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)medicare\s*wages(?:\s*and\s*tips)?[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		currencySpec("medicareTaxWithheld", "Medicare Tax Withheld",
			`(?i)box\s*6\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)medicare\s*tax\s*withheld[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		{
			Key:   "employerEIN",
			Label: "Employer Identification Number",
			Patterns: compile([]string{
				`(?i)employer[^\n]{0,40}?(?:EIN|identification\s*number)[^\d]*(\d{2}[- ]?\d{7})`,
				`(?i)\bEIN\b[^\d]*(\d{2}[- ]?\d{7})`,
				`\b(\d{2}-\d{7})\b`,
			}),
			Type: ValueEIN,
		},
		{
			Key:   "employeeSSN",
			Label: "Employee Social Security Number",
			Patterns: compile([]string{
				`(?i)(?:employee'?s?\s*)?(?:social\s*security|SSN)[^\d]*(\d{3}[- ]?\d{2}[- ]?\d{4})`,
				`\b(\d{3}-\d{2}-\d{4})\b`,
			}),
			Type: ValueSSN,
		},
		currencySpec("stateWages", "State Wages, Tips, Etc.",
			`(?i)box\s*16\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)state\s*wages[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		currencySpec("stateTaxWithheld", "State Income Tax",
			`(?i)box\s*17\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)state\s*income\s*tax[^\d$]*\$?\s*([\d,]+\.?\d*)`),
	},
	rules: []WithholdingRule{
		{WithholdingKey: "federalTaxWithheld", GrossKey: "wages"},
		{WithholdingKey: "stateTaxWithheld", GrossKey: "stateWages"},
	},
}

var int1099Parser = &FormParser{
	docType: dto.DocType1099INT,
	specs: []FieldSpec{
		{
			Key:   "interestIncome",
			Label: "Interest Income",
			Patterns: compile([]string{
				`(?i)box\s*1\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
				`(?i)interest\s*income[^\d$]*\$?\s*([\d,]+\.?\d*)`,
			}),
			Type:     ValueCurrency,
			Required: true,
		},
		currencySpec("earlyWithdrawalPenalty", "Early Withdrawal Penalty",
			`(?i)box\s*2\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)early\s*withdrawal\s*penalty[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		currencySpec("usSavingsBondInterest", "U.S. Savings Bonds and Treasury Interest",
			`(?i)box\s*3\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)savings\s*bonds?\s*(?:and\s*treas(?:ury)?\.?\s*)?(?:obligations\s*)?interest[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		currencySpec("federalTaxWithheld", "Federal Income Tax Withheld",
			`(?i)box\s*4\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)federal\s*income\s*tax\s*withheld[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		currencySpec("taxExemptInterest", "Tax-Exempt Interest",
			`(?i)box\s*8\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)tax[- ]exempt\s*interest[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		{
			Key:   "payerTIN",
			Label: "Payer's TIN",
			Patterns: compile([]string{
				`(?i)payer'?s?\s*TIN[^\d]*(\d{2}[- ]?\d{7})`,
				`\b(\d{2}-\d{7})\b`,
			}),
			Type: ValueEIN,
		},
	},
	rules: []WithholdingRule{
		{WithholdingKey: "federalTaxWithheld", GrossKey: "interestIncome"},
	},
}

var div1099Parser = &FormParser{
	docType: dto.DocType1099DIV,
	specs: []FieldSpec{
		{
			Key:   "ordinaryDividends",
			Label: "Total Ordinary Dividends",
			Patterns: compile([]string{
				`(?i)box\s*1a\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
				`(?i)(?:total\s*)?ordinary\s*dividends[^\d$]*\$?\s*([\d,]+\.?\d*)`,
			}),
			Type:     ValueCurrency,
			Required: true,
		},
		currencySpec("qualifiedDividends", "Qualified Dividends",
			`(?i)box\s*1b\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)qualified\s*dividends[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		currencySpec("totalCapitalGain", "Total Capital Gain Distributions",
			`(?i)box\s*2a\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)(?:total\s*)?capital\s*gain\s*distr(?:ibutions)?\.?[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		currencySpec("federalTaxWithheld", "Federal Income Tax Withheld",
			`(?i)box\s*4\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)federal\s*income\s*tax\s*withheld[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		{
			Key:   "payerTIN",
			Label: "Payer's TIN",
			Patterns: compile([]string{
				`(?i)payer'?s?\s*TIN[^\d]*(\d{2}[- ]?\d{7})`,
				`\b(\d{2}-\d{7})\b`,
			}),
			Type: ValueEIN,
		},
	},
	rules: []WithholdingRule{
		{WithholdingKey: "federalTaxWithheld", GrossKey: "ordinaryDividends"},
	},
	postParse: dropQualifiedAboveOrdinary,
}

var nec1099Parser = &FormParser{
	docType: dto.DocType1099NEC,
	specs: []FieldSpec{
		{
			Key:   "nonemployeeCompensation",
			Label: "Nonemployee Compensation",
			Patterns: compile([]string{
				`(?i)box\s*1\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
				`(?i)nonemployee\s*compensation[^\d$]*\$?\s*([\d,]+\.?\d*)`,
			}),
			Type:     ValueCurrency,
			Required: true,
		},
		currencySpec("federalTaxWithheld", "Federal Income Tax Withheld",
			`(?i)box\s*4\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)federal\s*income\s*tax\s*withheld[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		{
			Key:   "payerTIN",
			Label: "Payer's TIN",
			Patterns: compile([]string{
				`(?i)payer'?s?\s*TIN[^\d]*(\d{2}[- ]?\d{7})`,
				`\b(\d{2}-\d{7})\b`,
			}),
			Type: ValueEIN,
		},
		{
			Key:   "recipientTIN",
			Label: "Recipient's TIN",
			Patterns: compile([]string{
				`(?i)recipient'?s?\s*TIN[^\d]*(\d{3}[- ]?\d{2}[- ]?\d{4})`,
				`\b(\d{3}-\d{2}-\d{4})\b`,
			}),
			Type: ValueSSN,
		},
	},
	rules: []WithholdingRule{
		{WithholdingKey: "federalTaxWithheld", GrossKey: "nonemployeeCompensation"},
	},
}

var mortgage1098Parser = &FormParser{
	docType: dto.DocType1098,
	specs: []FieldSpec{
		{
			Key:   "mortgageInterestReceived",
			Label: "Mortgage Interest Received",
			Patterns: compile([]string{
				`(?i)box\s*1\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
				`(?i)mortgage\s*interest\s*received[^\d$]*\$?\s*([\d,]+\.?\d*)`,
			}),
			Type:     ValueCurrency,
			Required: true,
		},
		currencySpec("outstandingPrincipal", "Outstanding Mortgage Principal",
			`(?i)box\s*2\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)outstanding\s*(?:mortgage\s*)?principal[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		{
			Key:   "mortgageOriginationDate",
			Label: "Mortgage Origination Date",
			Patterns: compile([]string{
				`(?i)origination\s*date[^\d]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			}),
			Type: ValueDate,
		},
		currencySpec("mortgageInsurancePremiums", "Mortgage Insurance Premiums",
			`(?i)box\s*5\b[^$\n]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)mortgage\s*insurance\s*premiums[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		currencySpec("realEstateTaxes", "Real Estate Taxes",
			`(?i)real\s*estate\s*tax(?:es)?[^\d$]*\$?\s*([\d,]+\.?\d*)`,
			`(?i)property\s*tax(?:es)?[^\d$]*\$?\s*([\d,]+\.?\d*)`),
		{
			Key:   "lenderTIN",
			Label: "Lender's TIN",
			Patterns: compile([]string{
				`(?i)(?:lender|recipient)'?s?\s*TIN[^\d]*(\d{2}[- ]?\d{7})`,
				`\b(\d{2}-\d{7})\b`,
			}),
			Type: ValueEIN,
		},
	},
}

// dropQualifiedAboveOrdinary removes a qualified-dividends value that exceeds
// ordinary dividends; the two boxes cannot disagree that way on a real form,
// so the larger reading is an OCR artifact.
func dropQualifiedAboveOrdinary(fields []dto.ExtractedField) []dto.ExtractedField {
	var ordinary float64
	found := false
	for _, f := range fields {
		if f.Key == "ordinaryDividends" {
			if v, ok := f.Value.(float64); ok {
				ordinary = v
				found = true
			}
		}
	}
	if !found {
		return fields
	}
	out := fields[:0]
	for _, f := range fields {
		if f.Key == "qualifiedDividends" {
			if v, ok := f.Value.(float64); ok && v > ordinary {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}
