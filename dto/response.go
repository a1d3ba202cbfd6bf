package dto

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ExtractionResponse is the final response structure for a batch upload.
// Failed counts documents dropped by per-document fault isolation.
type ExtractionResponse struct {
	Documents   []ExtractedDocument `json:"documents"`
	Failed      int                 `json:"failed"`
	ProcessedAt string              `json:"processed_at"`
}
