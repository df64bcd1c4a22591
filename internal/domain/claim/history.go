package claim

import (
	"strings"
	"time"

	"github.com/verimotive/claims-engine/internal/domain/values"
)

// HistoryEntry is one prior claim from the claims store, consumed read-only
type HistoryEntry struct {
	Date         time.Time    `json:"date"`
	DamagedParts []string     `json:"damaged_parts"`
	Cost         values.Money `json:"cost"`
}

// SharedParts counts damaged parts this entry has in common with the set
func (h *HistoryEntry) SharedParts(current map[string]struct{}) int {
	shared := 0
	for _, p := range h.DamagedParts {
		if _, ok := current[strings.ToLower(strings.TrimSpace(p))]; ok {
			shared++
		}
	}
	return shared
}
