package claim

import (
	"fmt"
	"strings"

	"github.com/verimotive/claims-engine/internal/domain/values"
)

// Severity classifies the overall damage in an assessment
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMinor
	SeverityModerate
	SeveritySevere
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityMinor:
		return "minor"
	case SeverityModerate:
		return "moderate"
	case SeveritySevere:
		return "severe"
	default:
		return "unknown"
	}
}

// ParseSeverity converts an external severity label to a Severity
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return SeverityNone, nil
	case "minor":
		return SeverityMinor, nil
	case "moderate":
		return SeverityModerate, nil
	case "severe":
		return SeveritySevere, nil
	default:
		return SeverityNone, fmt.Errorf("invalid severity: %q", s)
	}
}

// DamageAssessment is the record produced by the image-based damage detector,
// consumed read-only. External shapes are rejected at the boundary; inside
// the engine there is exactly one validated form.
type DamageAssessment struct {
	DamagedParts        []string     `json:"damaged_parts"`
	Severity            Severity     `json:"severity"`
	EstimatedRepairCost values.Money `json:"estimated_repair_cost"`
}

// NewDamageAssessment validates and builds an assessment from external input
func NewDamageAssessment(parts []string, severity string, repairCost float64) (*DamageAssessment, error) {
	sev, err := ParseSeverity(severity)
	if err != nil {
		return nil, err
	}
	if repairCost < 0 {
		return nil, fmt.Errorf("estimated repair cost cannot be negative")
	}
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("damaged part name cannot be empty")
		}
		cleaned = append(cleaned, p)
	}
	cost, err := values.NewMoneyFromFloat(repairCost, values.USD)
	if err != nil {
		return nil, err
	}
	return &DamageAssessment{
		DamagedParts:        cleaned,
		Severity:            sev,
		EstimatedRepairCost: cost,
	}, nil
}

// PartCount returns the number of damaged parts
func (d *DamageAssessment) PartCount() int {
	return len(d.DamagedParts)
}

// PartSet returns damaged parts as a set for pattern comparison
func (d *DamageAssessment) PartSet() map[string]struct{} {
	set := make(map[string]struct{}, len(d.DamagedParts))
	for _, p := range d.DamagedParts {
		set[strings.ToLower(p)] = struct{}{}
	}
	return set
}
