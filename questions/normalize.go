// questions/normalize.go - turns heterogeneous question files into models.Question
package questions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"ingresosgo/models"
)

// RawQuestion is one entry as found in a question file. Options may be a list
// or an {a..e} object; the answer may live under any of three keys.
type RawQuestion struct {
	Question           string          `json:"question"`
	Options            json.RawMessage `json:"options"`
	CorrectAnswer      json.RawMessage `json:"correctAnswer"`
	Answer             json.RawMessage `json:"answer"`
	CorrectAnswerSnake json.RawMessage `json:"correct_answer"`
	Explanation        string          `json:"explanation"`
}

var (
	ErrNoText        = errors.New("question text is empty")
	ErrFewOptions    = errors.New("question needs at least 2 options")
	ErrAnswerMissing = errors.New("correct answer is not one of the options")
)

var optionKeys = []string{"a", "b", "c", "d", "e"}

// DecodeFile parses a question file holding a JSON array.
func DecodeFile(data []byte) ([]RawQuestion, error) {
	var raws []RawQuestion
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return raws, nil
}

// Normalize validates raw and converts it. n is the 1-based position of the
// entry in its file and becomes part of the id.
func Normalize(raw RawQuestion, src Source, examType string, n int) (models.Question, error) {
	text := CleanText(raw.Question)
	if text == "" {
		return models.Question{}, ErrNoText
	}
	options, err := parseOptions(raw.Options)
	if err != nil {
		return models.Question{}, err
	}
	if len(options) < 2 {
		return models.Question{}, ErrFewOptions
	}
	answer, ok := resolveAnswer(options, raw.CorrectAnswer, raw.Answer, raw.CorrectAnswerSnake)
	if !ok {
		return models.Question{}, ErrAnswerMissing
	}
	difficulty := 1
	if examType == models.ExamTypeGeneral {
		difficulty = 2
	}
	return models.Question{
		ID:            fmt.Sprintf("%s_%s_%d", src.Key, examType, n),
		Question:      text,
		Options:       options,
		CorrectAnswer: answer,
		Subject:       src.Subject,
		Type:          examType,
		Difficulty:    difficulty,
		Explanation:   strings.TrimSpace(raw.Explanation),
	}, nil
}

// CleanText trims and collapses whitespace, including non-breaking spaces.
func CleanText(s string) string {
	s = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\u200b", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func parseOptions(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrFewOptions
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, v := range list {
			if s := CleanText(scalarString(v)); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("options must be a list or an object: %w", err)
	}
	lower := make(map[string]any, len(obj))
	for k, v := range obj {
		lower[strings.ToLower(strings.TrimSpace(k))] = v
	}
	out := make([]string, 0, len(optionKeys))
	for _, k := range optionKeys {
		if s := CleanText(scalarString(lower[k])); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func resolveAnswer(options []string, candidates ...json.RawMessage) (string, bool) {
	for _, raw := range candidates {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		switch a := v.(type) {
		case float64:
			if i := int(a); float64(i) == a && i >= 0 && i < len(options) {
				return options[i], true
			}
		case string:
			if ans, ok := matchOption(options, a); ok {
				return ans, true
			}
		}
	}
	return "", false
}

func matchOption(options []string, answer string) (string, bool) {
	answer = CleanText(answer)
	if answer == "" {
		return "", false
	}
	for _, o := range options {
		if o == answer {
			return o, true
		}
	}
	for _, o := range options {
		if strings.EqualFold(o, answer) {
			return o, true
		}
	}
	if len(answer) == 1 {
		if i := strings.Index("abcde", strings.ToLower(answer)); i >= 0 && i < len(options) {
			return options[i], true
		}
	}
	// "b) texto" style answers
	if len(answer) > 2 && (answer[1] == ')' || answer[1] == '.') {
		return matchOption(options, answer[2:])
	}
	return "", false
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// Fold lowercases s and strips diacritics so "Matematicas" matches "Matemáticas".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
