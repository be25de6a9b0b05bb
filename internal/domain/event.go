package domain

import (
	"time"

	"github.com/google/uuid"
)

// View names, used as metric labels and event types.
const (
	ViewCrashMap         = "crash_map"
	ViewSeverityAnalysis = "severity_analysis"
	ViewCrashCauses      = "crash_causes"
)

// ViewEvent records that a dashboard view was rendered with a given filter.
type ViewEvent struct {
	ID         string              `json:"id"`
	View       string              `json:"view"`
	Filters    map[string][]string `json:"filters,omitempty"`
	Rows       int                 `json:"rows"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// NewViewEvent stamps a view event with a fresh ID and the package clock.
func NewViewEvent(view string, filters map[string][]string, rows int) ViewEvent {
	return ViewEvent{
		ID:         uuid.NewString(),
		View:       view,
		Filters:    filters,
		Rows:       rows,
		OccurredAt: clock.Now().UTC(),
	}
}
