package service

import (
	"context"
	"errors"
	"log"

	"github.com/taxdraft/ocr-tax-extraction/dto"
)

var (
	// ErrSourceUnavailable means a provider could not initialize its
	// recognition engine. Recoverable by falling back to another provider.
	ErrSourceUnavailable = errors.New("text source unavailable")

	// ErrExtractionFailed means recognition threw mid-document.
	ErrExtractionFailed = errors.New("text extraction failed")
)

// TextSource converts a raw document into recognized text with a
// document-level confidence and optional per-word bounding boxes.
type TextSource interface {
	ExtractText(ctx context.Context, doc dto.Document) (dto.RecognizedText, error)
}

const (
	// Below this primary confidence a configured secondary provider is
	// consulted and the higher-confidence result wins.
	hybridFallbackThreshold = 0.7

	degradedConfidence = 0.1
	degradedText       = "[text recognition failed for this document]"
)

// HybridSource invokes a primary provider and falls back to a secondary when
// the primary's confidence is low. A primary failure is absorbed into a
// degraded low-confidence result rather than propagated, so recognition
// failing on one document can never crash a batch.
type HybridSource struct {
	primary   TextSource
	secondary TextSource
}

func NewHybridSource(primary, secondary TextSource) *HybridSource {
	return &HybridSource{primary: primary, secondary: secondary}
}

func (h *HybridSource) ExtractText(ctx context.Context, doc dto.Document) (dto.RecognizedText, error) {
	rec, err := h.primary.ExtractText(ctx, doc)
	if err != nil {
		log.Printf("primary text source failed for %s, continuing degraded: %v", doc.Filename, err)
		return dto.RecognizedText{Text: degradedText, Confidence: degradedConfidence}, nil
	}

	if rec.Confidence < hybridFallbackThreshold && h.secondary != nil {
		alt, altErr := h.secondary.ExtractText(ctx, doc)
		if altErr != nil {
			log.Printf("secondary text source failed for %s, keeping primary result: %v", doc.Filename, altErr)
			return rec, nil
		}
		if alt.Confidence > rec.Confidence {
			return alt, nil
		}
	}
	return rec, nil
}
