package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lingoflash/internal/config"
	"github.com/vytor/lingoflash/internal/models"
	"google.golang.org/genai"
)

var key = models.AnalysisKey{Text: "猫が好き", LearningLanguage: "ja", NativeLanguage: "en"}

func TestDecode(t *testing.T) {
	got, err := Decode([]byte(`{"translation":"I like cats","words":[{"word":"猫","meaning":"cat"}]}`))

	require.NoError(t, err)
	assert.Equal(t, "I like cats", got.Translation)
	assert.JSONEq(t, `[{"word":"猫","meaning":"cat"}]`, string(got.Words))
	assert.JSONEq(t, `[]`, string(got.Grammar))
	assert.JSONEq(t, `[]`, string(got.Notes))
	assert.False(t, got.Degraded)
}

func TestDecode_NonStringTranslation(t *testing.T) {
	got, err := Decode([]byte(`{"translation":{"literal":"cat like"},"notes":null}`))

	require.NoError(t, err)
	assert.JSONEq(t, `{"literal":"cat like"}`, got.Translation)
	assert.JSONEq(t, `[]`, string(got.Notes))
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`not json`))

	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDegraded(t *testing.T) {
	parse := Degraded(errors.Join(ErrMalformedResponse, errors.New("bad")))
	assert.True(t, parse.Degraded)
	assert.Equal(t, "Analysis failed - JSON parsing error", parse.Translation)
	assert.JSONEq(t, `["Error processing response"]`, string(parse.Words))

	conn := Degraded(ErrUnavailable)
	assert.Equal(t, "Analysis failed - Connection error", conn.Translation)

	other := Degraded(errors.New("boom"))
	assert.Equal(t, "Analysis failed", other.Translation)
	assert.JSONEq(t, `["Error: boom"]`, string(other.Notes))
}

func TestPrompt(t *testing.T) {
	p := Prompt(key)

	assert.Contains(t, p, "Analyze this text in ja:")
	assert.Contains(t, p, `"猫が好き"`)
	assert.Contains(t, p, "helpful analysis in en")
	assert.Contains(t, p, "translation, words, grammar, notes")
}

func TestCache_GetOrCompute(t *testing.T) {
	calls := 0
	analyzer := AnalyzerFunc(func(ctx context.Context, k models.AnalysisKey) (models.Analysis, error) {
		calls++
		return models.Analysis{Translation: "I like cats"}, nil
	})
	c := NewCache(nil)

	first, hit := c.GetOrCompute(context.Background(), key, analyzer)
	assert.False(t, hit)
	second, hit := c.GetOrCompute(context.Background(), key, analyzer)
	assert.True(t, hit)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())

	other := key
	other.NativeLanguage = "es"
	_, hit = c.GetOrCompute(context.Background(), other, analyzer)
	assert.False(t, hit, "the language pair is part of the key")
	assert.Equal(t, 2, calls)
}

func TestCache_StoresDegradedAndEvictRecomputes(t *testing.T) {
	fail := true
	analyzer := AnalyzerFunc(func(ctx context.Context, k models.AnalysisKey) (models.Analysis, error) {
		if fail {
			return models.Analysis{}, ErrUnavailable
		}
		return models.Analysis{Translation: "ok"}, nil
	})
	c := NewCache(nil)

	got, _ := c.GetOrCompute(context.Background(), key, analyzer)
	require.True(t, got.Degraded)

	fail = false
	got, hit := c.GetOrCompute(context.Background(), key, analyzer)
	assert.True(t, hit, "failed analyses are cached too")
	assert.True(t, got.Degraded)

	assert.True(t, c.Evict(key))
	assert.False(t, c.Evict(key))
	got, _ = c.GetOrCompute(context.Background(), key, analyzer)
	assert.Equal(t, "ok", got.Translation)
}

func TestCache_EntriesAreCopies(t *testing.T) {
	c := NewCache(map[string]models.Analysis{key.String(): {Translation: "x"}})

	entries := c.Entries()
	delete(entries, key.String())
	clone := c.Clone()
	clone.Evict(key)

	_, ok := c.Get(key)
	assert.True(t, ok)
}

func TestOllama_Analyze(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": `{"translation":"I like cats","grammar":["が marks the object of 好き"]}`,
		})
	}))
	defer srv.Close()

	o := NewOllama(srv.URL+"/", "llama3.2:3b", 5*time.Second)
	result, err := o.Analyze(context.Background(), key)

	require.NoError(t, err)
	assert.Equal(t, "I like cats", result.Translation)
	assert.JSONEq(t, `["が marks the object of 好き"]`, string(result.Grammar))
	assert.Equal(t, "llama3.2:3b", got.Model)
	assert.Equal(t, "json", got.Format)
	assert.False(t, got.Stream)
	assert.Contains(t, got.Prompt, key.Text)
}

func TestOllama_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not found", http.StatusNotFound)
			},
			want: ErrUnavailable,
		},
		{
			name: "envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"done":true}`))
			},
			want: ErrMalformedResponse,
		},
		{
			name: "model output",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"response":"sorry, I cannot"}`))
			},
			want: ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewOllama(srv.URL, "m", time.Second).Analyze(context.Background(), key)

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOllama_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	result := Run(context.Background(), NewOllama(url, "m", time.Second), key)

	assert.True(t, result.Degraded)
	assert.Equal(t, "Analysis failed - Connection error", result.Translation)
}

type fakeGenerator struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	config *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	return f.resp, f.err
}

func candidate(reason genai.FinishReason, parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content, FinishReason: reason}},
	}
}

func TestGemini_Analyze(t *testing.T) {
	fake := &fakeGenerator{resp: candidate(genai.FinishReasonStop, `{"translation":`, `"I like cats"}`)}
	g := &Gemini{models: fake, model: "gemini-2.0-flash", timeout: time.Second}

	result, err := g.Analyze(context.Background(), key)

	require.NoError(t, err)
	assert.Equal(t, "I like cats", result.Translation)
	assert.Equal(t, "gemini-2.0-flash", fake.model)
	assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
}

func TestGemini_Errors(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeGenerator
		want error
	}{
		{"call failed", &fakeGenerator{err: errors.New("quota")}, ErrUnavailable},
		{"no candidates", &fakeGenerator{resp: &genai.GenerateContentResponse{}}, ErrMalformedResponse},
		{"blocked", &fakeGenerator{resp: candidate(genai.FinishReasonSafety)}, ErrBlocked},
		{"not json", &fakeGenerator{resp: candidate(genai.FinishReasonStop, "plain text")}, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Gemini{models: tt.fake, model: "m"}

			_, err := g.Analyze(context.Background(), key)

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewGemini_RequiresKeyAndModel(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "m", time.Second)
	assert.Error(t, err)

	_, err = NewGemini(context.Background(), "key", "", time.Second)
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Config{AnalysisBackend: BackendOllama, OllamaHost: "http://localhost:11434", OllamaModel: "m", AnalysisTimeout: time.Second}

	a, err := FromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &Ollama{}, a)

	cfg.AnalysisBackend = "openai"
	_, err = FromConfig(context.Background(), cfg)
	assert.Error(t, err)
}
