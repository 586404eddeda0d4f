package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type staticGenerator struct {
	resp   string
	err    error
	prompt string
	temp   float32
	tokens int32
}

func (s *staticGenerator) GenerateContent(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error) {
	_ = ctx
	s.prompt = prompt
	s.temp = temperature
	s.tokens = maxTokens
	return s.resp, s.err
}

const fencedResponse = "```json\n" + `{
  "offerName": "강남 아파트 1차",
  "region": "서울",
  "address": "서울시 강남구",
  "housingCategory": "아파트",
  "minAge": 19,
  "maxAge": 65,
  "minIncome": 30000000,
  "maxIncome": 100000000,
  "minHouseholdMembers": 1,
  "maxHouseholdMembers": 5,
  "maxHousingOwned": 0,
  "specialQualifications": null,
  "preferenceCategories": "신혼부부",
  "minPrice": 500000000,
  "maxPrice": 900000000,
  "applicationPeriod": "2026-09-01 ~ 2026-09-14"
}` + "\n```"

func TestExtractParsesFencedJSON(t *testing.T) {
	gen := &staticGenerator{resp: fencedResponse}
	ext := NewExtractor(gen)

	got, err := ext.Extract(context.Background(), "공고문 텍스트")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if got.OfferName == nil || *got.OfferName != "강남 아파트 1차" {
		t.Errorf("offerName = %v", got.OfferName)
	}
	if got.Region == nil || *got.Region != "서울" {
		t.Errorf("region = %v", got.Region)
	}
	if got.MinAge == nil || *got.MinAge != 19 {
		t.Errorf("minAge = %v", got.MinAge)
	}
	if got.MaxIncome == nil || *got.MaxIncome != 100000000 {
		t.Errorf("maxIncome = %v", got.MaxIncome)
	}
	if got.MaxHousingOwned == nil || *got.MaxHousingOwned != 0 {
		t.Errorf("maxHousingOwned = %v", got.MaxHousingOwned)
	}
	if got.SpecialQualifications != nil {
		t.Errorf("specialQualifications should be nil, got %q", *got.SpecialQualifications)
	}
	if got.ApplicationPeriod == nil || *got.ApplicationPeriod != "2026-09-01 ~ 2026-09-14" {
		t.Errorf("applicationPeriod = %v", got.ApplicationPeriod)
	}
}

func TestExtractRequestConfig(t *testing.T) {
	gen := &staticGenerator{resp: `{"region": "서울"}`}
	ext := NewExtractor(gen)

	if _, err := ext.Extract(context.Background(), "본문"); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if gen.temp != 0.2 {
		t.Errorf("temperature = %v, want 0.2", gen.temp)
	}
	if gen.tokens != 2000 {
		t.Errorf("maxTokens = %d, want 2000", gen.tokens)
	}
	if !strings.Contains(gen.prompt, "본문") {
		t.Error("prompt must embed the raw text")
	}
	if !strings.Contains(gen.prompt, "JSON") {
		t.Error("prompt must request JSON output")
	}
}

func TestExtractToleratesPartialJSON(t *testing.T) {
	// Truncated output: only some fields survive. Each survives independently.
	gen := &staticGenerator{resp: `{"offerName": "수원 오피스텔", "minAge": 30, "maxIncome": broken!!`}
	ext := NewExtractor(gen)

	got, err := ext.Extract(context.Background(), "text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.OfferName == nil || *got.OfferName != "수원 오피스텔" {
		t.Errorf("offerName = %v", got.OfferName)
	}
	if got.MinAge == nil || *got.MinAge != 30 {
		t.Errorf("minAge = %v", got.MinAge)
	}
	if got.MaxIncome != nil {
		t.Errorf("maxIncome should be nil for malformed value, got %v", *got.MaxIncome)
	}
}

func TestExtractTotalParseFailure(t *testing.T) {
	gen := &staticGenerator{resp: "죄송합니다. 문서를 해석할 수 없습니다."}
	ext := NewExtractor(gen)

	_, err := ext.Extract(context.Background(), "text")
	if !errors.Is(err, ErrUnusableOutput) {
		t.Fatalf("expected ErrUnusableOutput, got %v", err)
	}
}

func TestExtractPropagatesGeneratorError(t *testing.T) {
	genErr := errors.New("model unavailable")
	gen := &staticGenerator{err: genErr}
	ext := NewExtractor(gen)

	_, err := ext.Extract(context.Background(), "text")
	if !errors.Is(err, genErr) {
		t.Fatalf("expected wrapped generator error, got %v", err)
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
