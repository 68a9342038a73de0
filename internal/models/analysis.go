package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AnalysisKey identifies one memoized text analysis.
type AnalysisKey struct {
	Text             string
	LearningLanguage string
	NativeLanguage   string
}

// String renders the key as "text:learning:native", the form used in the
// persisted analysis_cache object.
func (k AnalysisKey) String() string {
	return k.Text + ":" + k.LearningLanguage + ":" + k.NativeLanguage
}

// ParseAnalysisKey splits a persisted key. The two language codes never
// contain a colon, so the text is everything before the last two.
func ParseAnalysisKey(s string) (AnalysisKey, error) {
	last := strings.LastIndex(s, ":")
	if last < 0 {
		return AnalysisKey{}, fmt.Errorf("analysis key %q: missing language pair", s)
	}
	mid := strings.LastIndex(s[:last], ":")
	if mid < 0 {
		return AnalysisKey{}, fmt.Errorf("analysis key %q: missing native language", s)
	}
	return AnalysisKey{
		Text:             s[:mid],
		LearningLanguage: s[mid+1 : last],
		NativeLanguage:   s[last+1:],
	}, nil
}

// Analysis is the structured result of the text-analysis service. Words,
// Grammar and Notes are kept as raw JSON because the model decides their
// shape (plain strings, tables of objects, ...).
type Analysis struct {
	Translation string          `json:"translation"`
	Words       json.RawMessage `json:"words"`
	Grammar     json.RawMessage `json:"grammar"`
	Notes       json.RawMessage `json:"notes"`
	Degraded    bool            `json:"degraded,omitempty"`
}
