package handler

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taxdraft/ocr-tax-extraction/dto"
	"github.com/taxdraft/ocr-tax-extraction/service"
)

type ExtractHandler struct {
	pipeline   *service.Pipeline
	ocrTimeout time.Duration
}

func NewExtractHandler(pipeline *service.Pipeline, ocrTimeout time.Duration) *ExtractHandler {
	return &ExtractHandler{
		pipeline:   pipeline,
		ocrTimeout: ocrTimeout,
	}
}

// ExtractDocuments handles POST /api/v1/documents/extract. It accepts a
// multipart upload of one or more documents plus optional metadata mapping
// filenames to document ids and PDF passwords, runs the extraction pipeline
// over the batch, and returns the documents that parsed successfully.
func (h *ExtractHandler) ExtractDocuments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "failed to parse multipart form", err)
		return
	}

	files := form.File["files[]"]
	request := &dto.ExtractionRequest{
		Files:    files,
		Metadata: c.PostForm("metadata"),
	}
	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	metaByFilename := make(map[string]dto.DocumentMeta)
	if request.Metadata != "" {
		var metadata dto.UploadMetadata
		if err := json.Unmarshal([]byte(request.Metadata), &metadata); err != nil {
			h.sendError(c, http.StatusBadRequest, "invalid metadata JSON", err)
			return
		}
		for _, m := range metadata.Documents {
			metaByFilename[m.Filename] = m
		}
	}

	log.Printf("extracting %d uploaded documents", len(files))

	var requests []service.ParseRequest
	for _, fileHeader := range files {
		f, err := fileHeader.Open()
		if err != nil {
			log.Printf("skipping %s: failed to open: %v", fileHeader.Filename, err)
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			log.Printf("skipping %s: failed to read: %v", fileHeader.Filename, err)
			continue
		}

		meta := metaByFilename[fileHeader.Filename]
		requests = append(requests, service.ParseRequest{
			Document: dto.Document{
				Filename: fileHeader.Filename,
				Data:     data,
				Password: meta.Password,
			},
			DocumentID: meta.DocumentID,
		})
	}

	// Recognition is the only blocking stage; bound it per batch so a
	// wedged engine cannot hold the request open indefinitely.
	timeout := h.ocrTimeout * time.Duration(len(requests))
	if timeout <= 0 {
		timeout = h.ocrTimeout
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	documents := h.pipeline.ParseDocuments(ctx, requests)

	c.JSON(http.StatusOK, dto.ExtractionResponse{
		Documents:   documents,
		Failed:      len(requests) - len(documents),
		ProcessedAt: time.Now().Format(time.RFC3339),
	})
}

func (h *ExtractHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	if err != nil {
		log.Printf("error: %s - %v", message, err)
	}
	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "EXTRACTION_FAILED",
		Message: message,
		Code:    statusCode,
	})
}
