package client

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"strings"
	"sync"

	_ "image/jpeg"
	_ "image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/taxdraft/ocr-tax-extraction/dto"
	"github.com/taxdraft/ocr-tax-extraction/service"
)

// TesseractClient is a text source backed by a long-lived Tesseract engine.
// The engine handle is lazily initialized on first use, shared across
// documents, and internally serialized; Terminate releases it and a later
// call re-initializes transparently.
type TesseractClient struct {
	mu       sync.Mutex
	engine   *gosseract.Client
	dataPath string
}

func NewTesseractClient(dataPath string) *TesseractClient {
	return &TesseractClient{dataPath: dataPath}
}

// Initialize prepares the recognition engine. Idempotent, including after
// Terminate.
func (tc *TesseractClient) Initialize() error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.initLocked()
}

func (tc *TesseractClient) initLocked() error {
	if tc.engine != nil {
		return nil
	}
	engine := gosseract.NewClient()
	if tc.dataPath != "" {
		engine.SetTessdataPrefix(tc.dataPath)
	}
	if err := engine.SetLanguage("eng"); err != nil {
		engine.Close()
		return fmt.Errorf("%w: %v", service.ErrSourceUnavailable, err)
	}
	tc.engine = engine
	return nil
}

// Terminate releases the engine. The client remains usable; the next
// extraction re-initializes.
func (tc *TesseractClient) Terminate() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.engine != nil {
		tc.engine.Close()
		tc.engine = nil
	}
	log.Println("tesseract engine terminated")
}

// ExtractText recognizes an uploaded image document.
func (tc *TesseractClient) ExtractText(ctx context.Context, doc dto.Document) (dto.RecognizedText, error) {
	return tc.ExtractImageBytes(ctx, doc.Data)
}

// ExtractImageBytes runs OCR over raw image bytes and returns the recognized
// text with per-word boxes in percent-of-page coordinates.
func (tc *TesseractClient) ExtractImageBytes(ctx context.Context, data []byte) (dto.RecognizedText, error) {
	if err := ctx.Err(); err != nil {
		return dto.RecognizedText{}, fmt.Errorf("%w: %v", service.ErrExtractionFailed, err)
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	if err := tc.initLocked(); err != nil {
		return dto.RecognizedText{}, err
	}

	if err := tc.engine.SetImageFromBytes(data); err != nil {
		return dto.RecognizedText{}, fmt.Errorf("%w: set image: %v", service.ErrExtractionFailed, err)
	}

	text, err := tc.engine.Text()
	if err != nil {
		return dto.RecognizedText{}, fmt.Errorf("%w: %v", service.ErrExtractionFailed, err)
	}

	rec := dto.RecognizedText{Text: text}

	boxes, err := tc.engine.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Text came through; a missing layout just means no boxes and an
		// unknown confidence.
		log.Printf("word bounding boxes unavailable: %v", err)
		return rec, nil
	}

	width, height := imageDimensions(data)
	var totalConfidence float64
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		token := dto.TextToken{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
		}
		if width > 0 && height > 0 {
			token.BBox = dto.BBox{
				float64(box.Box.Min.X) / float64(width) * 100,
				float64(box.Box.Min.Y) / float64(height) * 100,
				float64(box.Box.Dx()) / float64(width) * 100,
				float64(box.Box.Dy()) / float64(height) * 100,
			}
		}
		rec.Tokens = append(rec.Tokens, token)
		totalConfidence += token.Confidence
	}
	if len(rec.Tokens) > 0 {
		rec.Confidence = totalConfidence / float64(len(rec.Tokens))
	}
	return rec, nil
}

func imageDimensions(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
