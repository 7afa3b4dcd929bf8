// Package classifier maps free complaint text to a category, severity and
// handling plan using a fixed keyword rule table.
package classifier

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kiranshivaraju/voicedesk/pkg/models"
)

const (
	summaryVerbatimLimit = 50
	summaryCutLength     = 120
	ellipsis             = "…"
)

// Keyword tables. Category rules are evaluated in the order listed; the first
// rule with any matching keyword wins.
var (
	emergencyKeywords = []string{"쓰러", "화재", "불이", "폭발", "위험", "위독", "사고", "피가", "폭행"}
	distressKeywords  = []string{"힘들"}

	categoryRules = []struct {
		category models.Category
		keywords []string
	}{
		{models.CategoryMentalHealth, []string{"우울", "불안", "상담", "심리", "괴로", "힘들", "죽고 싶"}},
		{models.CategoryPension, []string{"연금", "국민연금", "기초연금", "수급", "복지"}},
		{models.CategoryFacility, []string{"가로등", "도로", "보도", "나무", "쓰러져", "전선", "쓰레기", "시설", "건물"}},
	}
)

// Analyze classifies raw complaint text. It is deterministic and total: the
// empty string classifies as OTHER with LOW severity. Callers reject blank
// transcripts before reaching this point.
func Analyze(raw string) models.AnalysisResult {
	category := DetectCategory(raw)
	severity := DetectSeverity(raw, category)
	handlingType, handlingDesc := DecideHandling(category, severity)
	return models.AnalysisResult{
		SummaryText:  Summarize(raw),
		Category:     category,
		Severity:     severity,
		HandlingType: handlingType,
		HandlingDesc: handlingDesc,
	}
}

// Summarize returns the trimmed text when it is at most 50 characters long,
// otherwise a hard cut of the first 120 characters followed by an ellipsis.
func Summarize(raw string) string {
	text := strings.TrimSpace(raw)
	runes := []rune(text)
	if len(runes) <= summaryVerbatimLimit {
		return text
	}
	if len(runes) > summaryCutLength {
		runes = runes[:summaryCutLength]
	}
	return strings.TrimRightFunc(string(runes), unicode.IsSpace) + ellipsis
}

// DetectCategory returns the first category whose keyword set matches.
func DetectCategory(raw string) models.Category {
	text := strings.ToLower(raw)
	for _, rule := range categoryRules {
		if containsAny(text, rule.keywords) {
			return rule.category
		}
	}
	return models.CategoryOther
}

// DetectSeverity returns EMERGENCY when any emergency keyword is present,
// regardless of category.
func DetectSeverity(raw string, category models.Category) models.Severity {
	text := strings.ToLower(raw)
	if containsAny(text, emergencyKeywords) {
		return models.SeverityEmergency
	}
	if category == models.CategoryMentalHealth && containsAny(text, distressKeywords) {
		return models.SeverityNormal
	}
	if raw == "" {
		return models.SeverityLow
	}
	return models.SeverityNormal
}

// DecideHandling looks up the handling plan for a (category, severity) pair.
// Every pair yields a non-empty description.
func DecideHandling(category models.Category, severity models.Severity) (models.HandlingType, string) {
	switch category {
	case models.CategoryFacility:
		if severity == models.SeverityEmergency {
			return models.HandlingOnSiteVisit, "담당자가 현장을 방문하여 쓰러진 나무나 위험 요소를 즉시 확인합니다."
		}
		return models.HandlingOnSiteVisit, "시설 담당자가 현장을 확인하고 필요한 조치를 진행합니다."
	case models.CategoryPension:
		return models.HandlingInfoGuide, "국민연금이나 복지 안내를 확인한 뒤 필요한 정보를 안내드립니다."
	case models.CategoryMentalHealth:
		if severity == models.SeverityEmergency {
			return models.HandlingCounselorConnect, "위기 징후가 감지되어 전문 상담 연결을 도와드립니다."
		}
		return models.HandlingListeningSupport, "상담사를 연결하거나 가까운 지원 기관 연락처를 안내드립니다."
	default:
		return models.HandlingInfoGuide, "민원 내용을 담당자에게 전달하고 추가 안내를 제공합니다."
	}
}

// FormatUserMessage renders the message read back to the citizen once the
// complaint has been saved.
func FormatUserMessage(result models.AnalysisResult) string {
	return fmt.Sprintf(
		"말씀해 주신 내용은 '%s'로 정리되었어요. 카테고리: %s, 긴급도: %s 기준으로 처리 유형 '%s'을 안내합니다.",
		result.SummaryText, result.Category, result.Severity, result.HandlingType,
	)
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
