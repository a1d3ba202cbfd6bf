package client

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/taxdraft/ocr-tax-extraction/dto"
	"github.com/taxdraft/ocr-tax-extraction/service"
)

const (
	// Born-digital PDF text carries no OCR uncertainty.
	embeddedTextConfidence = 0.95

	// Shorter embedded text than this means the PDF is effectively a scan.
	minEmbeddedTextLen = 20
)

// PDFClient recognizes PDF documents: embedded text when the PDF is
// born-digital, page-image OCR when it is a scan. Non-PDF input is handed to
// the OCR engine directly, so the client is a complete primary source.
type PDFClient struct {
	ocr *TesseractClient
}

func NewPDFClient(ocr *TesseractClient) *PDFClient {
	return &PDFClient{ocr: ocr}
}

func (pc *PDFClient) ExtractText(ctx context.Context, doc dto.Document) (dto.RecognizedText, error) {
	if !strings.HasSuffix(strings.ToLower(doc.Filename), ".pdf") {
		return pc.ocr.ExtractText(ctx, doc)
	}

	text, err := extractEmbeddedText(doc.Data)
	if err != nil {
		log.Printf("embedded text extraction failed for %s: %v", doc.Filename, err)
	}
	if len(strings.TrimSpace(text)) >= minEmbeddedTextLen {
		return dto.RecognizedText{Text: text, Confidence: embeddedTextConfidence}, nil
	}

	// Scanned or image-only PDF: rasterized page images through OCR.
	images, err := extractPageImages(doc.Data, doc.Password)
	if err != nil {
		return dto.RecognizedText{}, fmt.Errorf("%w: page image extraction: %v", service.ErrExtractionFailed, err)
	}
	if len(images) == 0 {
		return dto.RecognizedText{}, fmt.Errorf("%w: no extractable text or page images", service.ErrExtractionFailed)
	}

	var combined strings.Builder
	var totalConfidence float64
	pages := 0
	for _, img := range images {
		buf := new(bytes.Buffer)
		if err := png.Encode(buf, img); err != nil {
			log.Printf("failed to encode page image for OCR: %v", err)
			continue
		}
		pageRec, err := pc.ocr.ExtractImageBytes(ctx, buf.Bytes())
		if err != nil {
			log.Printf("page OCR failed for %s: %v", doc.Filename, err)
			continue
		}
		combined.WriteString(pageRec.Text)
		combined.WriteString("\n")
		totalConfidence += pageRec.Confidence
		pages++

		// Payroll providers embed form metadata in QR codes; a decoded
		// payload joins the text so content patterns can score it.
		if payload := decodeQR(img); payload != "" {
			combined.WriteString(payload)
			combined.WriteString("\n")
		}
	}

	if pages == 0 {
		return dto.RecognizedText{}, fmt.Errorf("%w: OCR produced no pages", service.ErrExtractionFailed)
	}
	return dto.RecognizedText{
		Text:       combined.String(),
		Confidence: totalConfidence / float64(pages),
	}, nil
}

func extractEmbeddedText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var text bytes.Buffer
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		rows, _ := page.GetTextByRow()
		for _, row := range rows {
			for _, word := range row.Content {
				text.WriteString(word.S)
			}
			text.WriteString("\n")
		}
	}
	return text.String(), nil
}

func extractPageImages(data []byte, password string) ([]image.Image, error) {
	tempDir, err := os.MkdirTemp("", "pdf_pages")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	tempFile, err := os.CreateTemp("", "doc-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}
	tempFile.Close()

	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
	}

	if err := api.ExtractImagesFile(tempFile.Name(), tempDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	var images []image.Image
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f, err := os.Open(filepath.Join(tempDir, entry.Name()))
		if err != nil {
			continue
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

// decodeQR returns the payload of a QR code on the page image, or "".
func decodeQR(img image.Image) string {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return ""
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return ""
	}
	return result.GetText()
}
