package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/taxdraft/ocr-tax-extraction/dto"
	"github.com/taxdraft/ocr-tax-extraction/utils"
)

// ParseError wraps any unexpected failure inside one document's pipeline run.
type ParseError struct {
	DocumentID string
	Message    string
	Cause      error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse failed for document %s: %s: %v", e.DocumentID, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse failed for document %s: %s", e.DocumentID, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ParseRequest pairs one raw document with its caller-supplied id.
type ParseRequest struct {
	Document   dto.Document
	DocumentID string
}

// Pipeline sequences recognition, classification, parsing, and
// post-processing for single documents and batches. It holds no
// cross-document state; runs are independent.
type Pipeline struct {
	source     TextSource
	classifier *Classifier
}

func NewPipeline(source TextSource, classifier *Classifier) *Pipeline {
	return &Pipeline{source: source, classifier: classifier}
}

// ParseDocument runs the full pipeline for one document. Expected failure
// modes (no pattern match, low recognition confidence, unknown type) are
// represented in the result's confidence and type; only truly unexpected
// failures surface, wrapped as a ParseError.
func (p *Pipeline) ParseDocument(ctx context.Context, doc dto.Document, documentID string) (result *dto.ExtractedDocument, err error) {
	if documentID == "" {
		documentID = uuid.NewString()
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ParseError{DocumentID: documentID, Message: fmt.Sprintf("panic: %v", r)}
		}
	}()

	rec, err := p.source.ExtractText(ctx, doc)
	if err != nil {
		return nil, &ParseError{DocumentID: documentID, Message: "text recognition", Cause: err}
	}

	docType, classConfidence := p.classifier.Classify(doc.Filename, rec.Text)
	log.Printf("document %s classified as %s (confidence %.2f)", documentID, docType, classConfidence)

	var fields []dto.ExtractedField
	var rules []utils.WithholdingRule
	if parser, ok := utils.ParserFor(docType); ok {
		fields = parser.Parse(rec)
		rules = parser.Rules()
		if len(fields) == 0 {
			fields = utils.FallbackExtract(rec, false)
		}
		DampByClassification(fields, classConfidence)
	} else {
		fields = utils.FallbackExtract(rec, true)
	}

	stampSource(fields, documentID)
	PostProcess(fields, rules, rec.Confidence)

	return &dto.ExtractedDocument{
		DocumentID: documentID,
		Type:       docType,
		Fields:     fields,
	}, nil
}

// ParseDocuments runs each document's pipeline concurrently with per-document
// fault isolation: a failed document is logged and omitted, never aborting
// the rest. Successful documents keep their input order.
func (p *Pipeline) ParseDocuments(ctx context.Context, requests []ParseRequest) []dto.ExtractedDocument {
	results := make([]*dto.ExtractedDocument, len(requests))
	var wg sync.WaitGroup

	for i, req := range requests {
		wg.Add(1)
		go func(i int, req ParseRequest) {
			defer wg.Done()
			doc, err := p.ParseDocument(ctx, req.Document, req.DocumentID)
			if err != nil {
				log.Printf("dropping document from batch: %v", err)
				return
			}
			results[i] = doc
		}(i, req)
	}
	wg.Wait()

	out := make([]dto.ExtractedDocument, 0, len(requests))
	for _, doc := range results {
		if doc != nil {
			out = append(out, *doc)
		}
	}
	return out
}

// stampSource guarantees every field carries the caller-supplied document id
// before the document is returned.
func stampSource(fields []dto.ExtractedField, documentID string) {
	for i := range fields {
		if fields[i].Source == nil {
			fields[i].Source = &dto.FieldSource{Page: 1}
		}
		fields[i].Source.DocumentID = documentID
	}
}
