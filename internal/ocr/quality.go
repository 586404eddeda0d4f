package ocr

import "strings"

// Tier grades how trustworthy an OCR extraction is.
type Tier string

const (
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
)

// Grade assesses recognition quality for the pipeline. Text pulled from a
// PDF's own text layer is trusted as-is; only OCR output goes through the
// heuristics.
func Grade(text string, usedOCR bool) (Tier, string) {
	if !usedOCR {
		return TierHigh, ""
	}
	return AssessQuality(text)
}

// AssessQuality grades extracted text and returns a user-facing warning for
// anything below clean HIGH quality. The heuristics assume Korean housing
// announcements: plenty of hangul and the digits that carry the eligibility
// criteria.
func AssessQuality(text string) (Tier, string) {
	if strings.TrimSpace(text) == "" {
		return TierLow, "추출된 텍스트가 없습니다. 이미지 품질을 확인해주세요."
	}

	runes := []rune(text)
	length := len(runes)

	var korean, digits, alpha int
	for _, r := range runes {
		switch {
		case r >= 0xAC00 && r <= 0xD7A3:
			korean++
		case r >= '0' && r <= '9':
			digits++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			alpha++
		}
	}

	if length < 100 {
		return TierLow, "추출된 텍스트가 너무 짧습니다. 더 선명한 이미지를 사용해주세요."
	}

	koreanRatio := float64(korean) / float64(length)
	if koreanRatio < 0.1 && digits+alpha < 50 {
		return TierLow, "텍스트 인식이 불완전합니다. 이미지가 흐리거나 해상도가 낮을 수 있습니다."
	}

	if digits < 5 {
		return TierMedium, "자격 조건 숫자가 불완전할 수 있습니다. 결과를 확인해주세요."
	}

	if length > 500 && koreanRatio > 0.3 {
		return TierHigh, ""
	}

	return TierMedium, "일부 내용이 불완전할 수 있습니다. 결과를 확인해주세요."
}
