// Package models contains shared data models used across the VoiceDesk codebase.
package models

import "fmt"

// Category is the coarse topic a complaint is filed under.
type Category string

const (
	CategoryMentalHealth Category = "MENTAL_HEALTH"
	CategoryPension      Category = "PENSION"
	CategoryFacility     Category = "FACILITY"
	CategoryOther        Category = "OTHER"
)

// Severity is the urgency tier of a complaint.
type Severity string

const (
	SeverityEmergency Severity = "EMERGENCY"
	SeverityNormal    Severity = "NORMAL"
	SeverityLow       Severity = "LOW"
)

// HandlingType is the downstream action class assigned to a complaint.
type HandlingType string

const (
	HandlingOnSiteVisit      HandlingType = "ON_SITE_VISIT"
	HandlingInfoGuide        HandlingType = "INFO_GUIDE"
	HandlingCounselorConnect HandlingType = "COUNSELOR_CONNECT"
	HandlingListeningSupport HandlingType = "LISTENING_SUPPORT"
)

// AnalysisResult is the classifier output for one piece of complaint text.
// It is never persisted on its own; it is embedded in a Complaint or a log payload.
type AnalysisResult struct {
	SummaryText  string       `json:"summary_text"`
	Category     Category     `json:"category"`
	Severity     Severity     `json:"severity"`
	HandlingType HandlingType `json:"handling_type"`
	HandlingDesc string       `json:"handling_desc"`
}

// ParseCategory validates a client-supplied category string.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryMentalHealth, CategoryPension, CategoryFacility, CategoryOther:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// ParseSeverity validates a client-supplied severity string.
func ParseSeverity(s string) (Severity, error) {
	switch v := Severity(s); v {
	case SeverityEmergency, SeverityNormal, SeverityLow:
		return v, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// ParseHandlingType validates a client-supplied handling type string.
func ParseHandlingType(s string) (HandlingType, error) {
	switch h := HandlingType(s); h {
	case HandlingOnSiteVisit, HandlingInfoGuide, HandlingCounselorConnect, HandlingListeningSupport:
		return h, nil
	}
	return "", fmt.Errorf("unknown handling type %q", s)
}
