package extraction

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"zipduck-backend/internal/shared/telemetry"
)

const (
	// Low temperature keeps field extraction deterministic across runs.
	extractionTemperature = 0.2
	extractionMaxTokens   = 2000
)

// ErrUnusableOutput indicates the model response contained no recognizable
// criteria fields. It is a hard failure for the pipeline.
var ErrUnusableOutput = errors.New("unusable extraction output")

// Generator abstracts the AI generation capability.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error)
}

// Extractor turns raw announcement text into structured offer criteria.
type Extractor struct {
	AI Generator
}

// NewExtractor constructs an Extractor.
func NewExtractor(ai Generator) *Extractor {
	return &Extractor{AI: ai}
}

// Extract builds the instruction prompt, requests a completion, and parses
// the semi-structured JSON answer field by field.
func (e *Extractor) Extract(ctx context.Context, rawText string) (Criteria, error) {
	prompt := buildExtractionPrompt(rawText)

	response, err := e.AI.GenerateContent(ctx, prompt, extractionTemperature, extractionMaxTokens)
	if err != nil {
		return Criteria{}, fmt.Errorf("criteria extraction: %w", err)
	}

	criteria := parseResponse(response)
	if criteria.Empty() {
		telemetry.Error("extraction.unusable", map[string]any{
			"response_len": len(response),
		})
		return Criteria{}, ErrUnusableOutput
	}
	return criteria, nil
}

func buildExtractionPrompt(rawText string) string {
	var b strings.Builder
	b.WriteString(`다음은 주택 청약 공고문의 내용입니다. 이 문서에서 자격 조건을 추출해주세요.

**추출할 정보:**
1. 청약명 (분양 단지명)
2. 위치/지역
3. 주소
4. 주택 유형 (아파트, 오피스텔, 빌라 등)
5. 나이 제한 (최소 나이, 최대 나이)
6. 소득 기준 (최소 소득, 최대 소득, KRW 단위)
7. 세대원 수 조건 (최소, 최대)
8. 무주택 조건 (보유 가능한 주택 수)
9. 특별 자격 조건
10. 우대 카테고리
11. 가격 범위 (최저가, 최고가)
12. 청약 기간

**출력 형식 (JSON):**
` + "```json" + `
{
  "offerName": "청약명",
  "region": "지역 (서울, 경기 등)",
  "address": "상세 주소",
  "housingCategory": "아파트 또는 오피스텔 또는 빌라 또는 타운하우스 또는 기타",
  "minAge": 나이최소값,
  "maxAge": 나이최대값,
  "minIncome": 소득최소값,
  "maxIncome": 소득최대값,
  "minHouseholdMembers": 세대원수최소값,
  "maxHouseholdMembers": 세대원수최대값,
  "maxHousingOwned": 보유가능주택수,
  "specialQualifications": "특별 자격 조건",
  "preferenceCategories": "우대 카테고리",
  "minPrice": 최저가,
  "maxPrice": 최고가,
  "applicationPeriod": "청약 기간"
}
` + "```" + `

**주의사항:**
- 명확하지 않은 항목은 null로 표시
- 숫자는 반드시 숫자 타입으로
- 소득과 가격은 원(KRW) 단위로 변환
- JSON 형식을 정확히 준수

**문서 내용:**
`)
	b.WriteString(rawText)
	b.WriteString(`

위 내용을 분석하여 JSON 형식으로만 답변해주세요. 다른 설명은 포함하지 마세요.
`)
	return b.String()
}

// parseResponse tolerates partial or malformed JSON: each field is scanned
// independently, so one corrupt field never aborts the whole extraction.
func parseResponse(response string) Criteria {
	jsonStr := stripCodeFences(response)

	return Criteria{
		OfferName:             scanString(jsonStr, "offerName"),
		Region:                scanString(jsonStr, "region"),
		Address:               scanString(jsonStr, "address"),
		HousingCategory:       scanString(jsonStr, "housingCategory"),
		MinAge:                scanInt(jsonStr, "minAge"),
		MaxAge:                scanInt(jsonStr, "maxAge"),
		MinIncome:             scanInt64(jsonStr, "minIncome"),
		MaxIncome:             scanInt64(jsonStr, "maxIncome"),
		MinHouseholdMembers:   scanInt(jsonStr, "minHouseholdMembers"),
		MaxHouseholdMembers:   scanInt(jsonStr, "maxHouseholdMembers"),
		MaxHousingOwned:       scanInt(jsonStr, "maxHousingOwned"),
		SpecialQualifications: scanString(jsonStr, "specialQualifications"),
		PreferenceCategories:  scanString(jsonStr, "preferenceCategories"),
		MinPrice:              scanInt64(jsonStr, "minPrice"),
		MaxPrice:              scanInt64(jsonStr, "maxPrice"),
		ApplicationPeriod:     scanString(jsonStr, "applicationPeriod"),
	}
}

func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}
	return strings.TrimSpace(s)
}

func scanString(json, key string) *string {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*"([^"]+)"`)
	m := re.FindStringSubmatch(json)
	if m == nil {
		return nil
	}
	val := strings.TrimSpace(m[1])
	if val == "" || val == "null" {
		return nil
	}
	return &val
}

func scanInt(json, key string) *int {
	raw := scanNumber(json, key)
	if raw == "" {
		return nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &val
}

func scanInt64(json, key string) *int64 {
	raw := scanNumber(json, key)
	if raw == "" {
		return nil
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &val
}

func scanNumber(json, key string) string {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*(\d+)`)
	m := re.FindStringSubmatch(json)
	if m == nil {
		return ""
	}
	return m[1]
}
