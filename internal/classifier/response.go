package classifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dtroode/currencyguard-server/internal/model"
)

// maxTextLength caps denomination and feature names, in runes.
const maxTextLength = 200

var (
	errInvalidText = errors.New("invalid text")
	errMarkup      = errors.New("contains markup")
)

type analyzeResponse struct {
	Status       *string       `json:"status"`
	Confidence   *float64      `json:"confidence"`
	Denomination *string       `json:"denomination"`
	Features     []wireFeature `json:"features"`
}

type wireFeature struct {
	Name  string   `json:"name"`
	Score *float64 `json:"score"`
}

func (c *Client) decode(raw []byte) (model.Classification, error) {
	var resp analyzeResponse
	decoder := json.NewDecoder(bytes.NewReader(raw))
	if err := decoder.Decode(&resp); err != nil {
		return model.Classification{}, fmt.Errorf("%w: %w", ErrGatewayMalformedResponse, err)
	}

	if resp.Status == nil {
		return model.Classification{}, fmt.Errorf("%w: missing status", ErrGatewayMalformedResponse)
	}
	verdict := model.Verdict(strings.ToLower(strings.TrimSpace(*resp.Status)))
	if !verdict.Valid() {
		return model.Classification{}, fmt.Errorf("%w: unknown status %q", ErrGatewayMalformedResponse, *resp.Status)
	}

	if resp.Confidence == nil || !finite(*resp.Confidence) {
		return model.Classification{}, fmt.Errorf("%w: missing or non-finite confidence", ErrGatewayMalformedResponse)
	}

	result := model.Classification{
		Verdict:    verdict,
		Confidence: clampPercent(*resp.Confidence),
		Features:   make([]model.Feature, 0, len(resp.Features)),
	}

	if resp.Denomination != nil {
		denomination, err := c.text(*resp.Denomination)
		if err != nil {
			return model.Classification{}, fmt.Errorf("%w: denomination: %w", ErrGatewayMalformedResponse, err)
		}
		if denomination != "" {
			result.Denomination = &denomination
		}
	}

	for i, f := range resp.Features {
		name, err := c.text(f.Name)
		if err != nil {
			return model.Classification{}, fmt.Errorf("%w: feature %d: %w", ErrGatewayMalformedResponse, i, err)
		}
		if name == "" {
			return model.Classification{}, fmt.Errorf("%w: feature %d has no name", ErrGatewayMalformedResponse, i)
		}
		if f.Score == nil || !finite(*f.Score) {
			return model.Classification{}, fmt.Errorf("%w: feature %q has no finite score", ErrGatewayMalformedResponse, name)
		}
		result.Features = append(result.Features, model.Feature{Name: name, Score: clampPercent(*f.Score)})
	}

	if err := result.Validate(); err != nil {
		return model.Classification{}, fmt.Errorf("%w: %w", ErrGatewayMalformedResponse, err)
	}

	return result, nil
}

// text trims analyzer-provided text and returns it otherwise unchanged.
// Text the strict policy would alter, other than by escaping, is markup and is rejected.
func (c *Client) text(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxTextLength {
		return "", fmt.Errorf("%w: longer than %d characters", errInvalidText, maxTextLength)
	}
	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return "", fmt.Errorf("%w: control character in %q", errInvalidText, s)
	}
	if html.UnescapeString(c.policy.Sanitize(s)) != s {
		return "", fmt.Errorf("%w: %q", errMarkup, s)
	}
	return s, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
