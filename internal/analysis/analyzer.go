// Package analysis memoizes text analyses and talks to the model backends
// that produce them.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vytor/lingoflash/internal/models"
)

var (
	// ErrUnavailable wraps transport failures and non-2xx answers.
	ErrUnavailable = errors.New("analysis: service unavailable")
	// ErrMalformedResponse wraps model output that is not the expected JSON.
	ErrMalformedResponse = errors.New("analysis: malformed response")
)

// Analyzer produces a structured analysis of one sentence.
type Analyzer interface {
	Analyze(ctx context.Context, key models.AnalysisKey) (models.Analysis, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, key models.AnalysisKey) (models.Analysis, error)

func (f AnalyzerFunc) Analyze(ctx context.Context, key models.AnalysisKey) (models.Analysis, error) {
	return f(ctx, key)
}

// Prompt is the instruction sent to every backend.
func Prompt(key models.AnalysisKey) string {
	return fmt.Sprintf(`Analyze this text in %s:
"%s"

Provide a helpful analysis in %s including:
1. Translation
2. Word breakdown (key vocabulary and definitions) as a table that keeps each original word for reference.
3. Grammar points (if any)
4. Usage notes or cultural context (if relevant)

Format as JSON with these keys: translation, words, grammar, notes
Keep explanations clear and beginner-friendly.`, key.LearningLanguage, key.Text, key.NativeLanguage)
}

var emptyList = json.RawMessage(`[]`)

// Decode parses model output into an Analysis. Missing words, grammar and
// notes default to empty lists; a non-string translation is kept as its JSON
// text.
func Decode(raw []byte) (models.Analysis, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.Analysis{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var out models.Analysis
	if t, ok := fields["translation"]; ok {
		if err := json.Unmarshal(t, &out.Translation); err != nil {
			out.Translation = string(t)
		}
	}
	out.Words = orEmpty(fields["words"])
	out.Grammar = orEmpty(fields["grammar"])
	out.Notes = orEmpty(fields["notes"])
	return out, nil
}

func orEmpty(v json.RawMessage) json.RawMessage {
	if len(v) == 0 || string(v) == "null" {
		return emptyList
	}
	return v
}

// Degraded builds the placeholder analysis stored when a backend fails.
func Degraded(err error) models.Analysis {
	list := func(items ...string) json.RawMessage {
		b, _ := json.Marshal(items)
		return b
	}

	out := models.Analysis{Grammar: emptyList, Degraded: true}
	switch {
	case errors.Is(err, ErrMalformedResponse):
		out.Translation = "Analysis failed - JSON parsing error"
		out.Words = list("Error processing response")
		out.Notes = list("Technical error: " + err.Error())
	case errors.Is(err, ErrUnavailable):
		out.Translation = "Analysis failed - Connection error"
		out.Words = list("Could not connect to AI service")
		out.Notes = list("Connection error: " + err.Error())
	default:
		out.Translation = "Analysis failed"
		out.Words = emptyList
		out.Notes = list(fmt.Sprintf("Error: %v", err))
	}
	return out
}

// Run calls the analyzer and turns any failure into a degraded result.
func Run(ctx context.Context, a Analyzer, key models.AnalysisKey) models.Analysis {
	result, err := a.Analyze(ctx, key)
	if err != nil {
		return Degraded(err)
	}
	return result
}
