package dto

// DocumentType is the enumerated tax-form category used to select a parser.
type DocumentType string

const (
	DocTypeW2      DocumentType = "w2"
	DocType1099INT DocumentType = "1099-int"
	DocType1099DIV DocumentType = "1099-div"
	DocType1099NEC DocumentType = "1099-nec"
	DocType1098    DocumentType = "1098"
	DocTypeUnknown DocumentType = "unknown"
)

// BBox is a token position as (x, y, width, height) in percent-of-page units.
type BBox [4]float64

// TextToken is one recognized word with its layout position.
type TextToken struct {
	Text       string  `json:"text"`
	BBox       BBox    `json:"bbox"`
	Confidence float64 `json:"confidence"`
}

// RecognizedText is the output of a text source provider: the full recognized
// text, a document-level confidence in [0,1], and optional per-word boxes.
// It is produced once per document and discarded after parsing.
type RecognizedText struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	Tokens     []TextToken `json:"boundingBoxes,omitempty"`
}

// FieldSource records where an extracted value came from.
// DocumentID is always populated before a document is returned.
type FieldSource struct {
	DocumentID  string `json:"documentId"`
	Page        int    `json:"page"`
	BBox        *BBox  `json:"bbox,omitempty"`
	TextSnippet string `json:"textSnippet,omitempty"`
}

// ExtractedField is one confidence-scored value pulled from a document.
// Value is a string or a float64 depending on the field's value type;
// fields that fail to parse are dropped, never emitted with a nil value.
type ExtractedField struct {
	Key        string       `json:"key"`
	Label      string       `json:"label"`
	Value      interface{}  `json:"value"`
	Confidence float64      `json:"confidence"`
	Source     *FieldSource `json:"source,omitempty"`
}

// ExtractedDocument is the pipeline's terminal output for one document.
type ExtractedDocument struct {
	DocumentID string           `json:"documentId"`
	Type       DocumentType     `json:"type"`
	Fields     []ExtractedField `json:"fields"`
}

// Document is the raw input handed to the pipeline: the uploaded bytes plus
// the filename the classifier scores and an optional PDF user password.
type Document struct {
	Filename string
	Data     []byte
	Password string
}
