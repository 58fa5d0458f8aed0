package models

import (
	"time"

	"github.com/julianstephens/hsplan/internal/constants"
)

// Resource is a unit of curriculum a plan paces through.
// Book and Custom resources are paced by their unit catalog, Time resources
// by a fixed number of minutes per occurrence.
type Resource struct {
	ID                   string                 `json:"id"`
	SubjectID            string                 `json:"subject_id" validate:"required,uuid"`
	Kind                 constants.ResourceKind `json:"kind" validate:"required,oneof=book time custom"`
	Title                string                 `json:"title" validate:"required,max=200"`
	MinutesPerOccurrence *int                   `json:"minutes_per_occurrence,omitempty" validate:"omitempty,min=1,max=1440"`
	MaxUnitsPerDay       *int                   `json:"max_units_per_day,omitempty" validate:"omitempty,min=1,max=100"`
	CreatedAt            time.Time              `json:"created_at"`
}

// MaxPerDay returns the per-day occurrence cap, falling back to the default when unset
func (r Resource) MaxPerDay() int {
	if r.MaxUnitsPerDay == nil || *r.MaxUnitsPerDay < 1 {
		return constants.DefaultMaxUnitsPerDay
	}
	return *r.MaxUnitsPerDay
}

// ResourceUnit is one entry of a resource's ordered catalog (chapter, lesson, ...).
// Indices are 1-based and contiguous per resource.
type ResourceUnit struct {
	ID         string `json:"id"`
	ResourceID string `json:"resource_id"`
	Index      int    `json:"index"`
	Label      string `json:"label" validate:"required,max=200"`
}
