package dto

import (
	"errors"
	"mime/multipart"
)

// DocumentMeta maps one uploaded file to its caller-supplied document id.
type DocumentMeta struct {
	Filename   string `json:"filename"`
	DocumentID string `json:"document_id,omitempty"`
	Password   string `json:"password,omitempty"`
}

// UploadMetadata is the JSON blob accompanying a multipart upload.
type UploadMetadata struct {
	Documents []DocumentMeta `json:"documents"`
}

// ExtractionRequest represents the incoming multipart request.
type ExtractionRequest struct {
	Files    []*multipart.FileHeader `form:"files[]" binding:"required"`
	Metadata string                  `form:"metadata"`
}

// Validate performs basic validation on the request.
func (r *ExtractionRequest) Validate() error {
	if len(r.Files) == 0 {
		return errors.New("at least one file is required")
	}
	return nil
}
