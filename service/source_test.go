package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxdraft/ocr-tax-extraction/dto"
)

type stubSource struct {
	rec    dto.RecognizedText
	err    error
	called int
}

func (s *stubSource) ExtractText(_ context.Context, _ dto.Document) (dto.RecognizedText, error) {
	s.called++
	return s.rec, s.err
}

func TestHybridSourceConfidentPrimary(t *testing.T) {
	primary := &stubSource{rec: dto.RecognizedText{Text: "clean scan", Confidence: 0.92}}
	secondary := &stubSource{rec: dto.RecognizedText{Text: "other", Confidence: 0.99}}

	rec, err := NewHybridSource(primary, secondary).ExtractText(context.Background(), dto.Document{})

	require.NoError(t, err)
	assert.Equal(t, "clean scan", rec.Text)
	assert.Zero(t, secondary.called)
}

func TestHybridSourceFallsBackOnLowConfidence(t *testing.T) {
	primary := &stubSource{rec: dto.RecognizedText{Text: "blurry", Confidence: 0.4}}
	secondary := &stubSource{rec: dto.RecognizedText{Text: "sharper", Confidence: 0.85}}

	rec, err := NewHybridSource(primary, secondary).ExtractText(context.Background(), dto.Document{})

	require.NoError(t, err)
	assert.Equal(t, "sharper", rec.Text)
	assert.Equal(t, 0.85, rec.Confidence)
}

func TestHybridSourceKeepsPrimaryWhenSecondaryWorse(t *testing.T) {
	primary := &stubSource{rec: dto.RecognizedText{Text: "blurry", Confidence: 0.6}}
	secondary := &stubSource{rec: dto.RecognizedText{Text: "worse", Confidence: 0.3}}

	rec, err := NewHybridSource(primary, secondary).ExtractText(context.Background(), dto.Document{})

	require.NoError(t, err)
	assert.Equal(t, "blurry", rec.Text)
}

func TestHybridSourceDegradesOnPrimaryFailure(t *testing.T) {
	primary := &stubSource{err: errors.New("engine crashed")}

	rec, err := NewHybridSource(primary, nil).ExtractText(context.Background(), dto.Document{Filename: "w2.jpg"})

	require.NoError(t, err)
	assert.Equal(t, 0.1, rec.Confidence)
	assert.NotEmpty(t, rec.Text)
}

func TestHybridSourceKeepsPrimaryWhenSecondaryFails(t *testing.T) {
	primary := &stubSource{rec: dto.RecognizedText{Text: "blurry", Confidence: 0.5}}
	secondary := &stubSource{err: errors.New("no engine")}

	rec, err := NewHybridSource(primary, secondary).ExtractText(context.Background(), dto.Document{})

	require.NoError(t, err)
	assert.Equal(t, "blurry", rec.Text)
	assert.Equal(t, 0.5, rec.Confidence)
}

func TestHybridSourceWithoutSecondary(t *testing.T) {
	primary := &stubSource{rec: dto.RecognizedText{Text: "blurry", Confidence: 0.2}}

	rec, err := NewHybridSource(primary, nil).ExtractText(context.Background(), dto.Document{})

	require.NoError(t, err)
	assert.Equal(t, 0.2, rec.Confidence)
}
