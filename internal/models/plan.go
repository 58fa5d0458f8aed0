package models

import (
	"time"

	"github.com/julianstephens/hsplan/internal/constants"
)

// Plan binds one resource to a date range, an allowed-weekday mask and a pacing strategy
type Plan struct {
	ID              string             `json:"id"`
	ResourceID      string             `json:"resource_id" validate:"required,uuid"`
	StartDate       string             `json:"start_date" validate:"required,isodate"`     // YYYY-MM-DD format
	EndDate         string             `json:"end_date" validate:"required,isodate"`       // YYYY-MM-DD format
	AllowedDaysMask int                `json:"allowed_days_mask" validate:"min=0,max=127"` // bit0=Monday .. bit6=Sunday
	Strategy        constants.Strategy `json:"strategy" validate:"required,oneof=push catchup smart"`
	LookaheadDays   int                `json:"lookahead_days" validate:"min=1,max=365"`
	CreatedAt       time.Time          `json:"created_at"`
}

// TaskOccurrence is one scheduled unit of work on a specific date.
// Exactly one of UnitIndex and MinutesPlanned is set, matching the resource kind.
type TaskOccurrence struct {
	ID             string `json:"id,omitempty"`
	PlanID         string `json:"plan_id" validate:"required"`
	Date           string `json:"date" validate:"required,isodate"` // YYYY-MM-DD format
	UnitIndex      *int   `json:"unit_index,omitempty"`
	MinutesPlanned *int   `json:"minutes_planned,omitempty"`
	// Slot tells apart minute-paced occurrences that share a date.
	Slot   int  `json:"slot,omitempty" validate:"min=0"`
	Locked bool `json:"locked"`
}

// CompletionLog records evidence that an occurrence was actually done
type CompletionLog struct {
	ID               string    `json:"id"`
	TaskOccurrenceID string    `json:"task_occurrence_id" validate:"required,uuid"`
	CompletedUTC     time.Time `json:"completed_utc"`
	MinutesActual    *int      `json:"minutes_actual,omitempty" validate:"omitempty,min=0,max=1440"`
	Notes            string    `json:"notes,omitempty" validate:"max=2000"`
}

// SchedulePreview is the ephemeral result of materializing a plan over a window.
// It is never persisted as-is.
type SchedulePreview struct {
	PlanID      string             `json:"plan_id"`
	From        string             `json:"from,omitempty"` // clamped window start, empty when the window is empty
	To          string             `json:"to,omitempty"`   // clamped window end
	Strategy    constants.Strategy `json:"strategy"`
	Items       []TaskOccurrence   `json:"items"`
	Outstanding int                `json:"outstanding"` // backlog work items not absorbed in this window
	Warnings    []string           `json:"warnings,omitempty"`
}
