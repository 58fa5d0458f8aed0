package models

import "time"

// Learner is a student whose subjects and plans are tracked
type Learner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=120"`
	Grade     string    `json:"grade,omitempty" validate:"max=32"`
	CreatedAt time.Time `json:"created_at"`
}

// Subject groups resources for a learner (e.g. "Math")
type Subject struct {
	ID        string    `json:"id"`
	LearnerID string    `json:"learner_id" validate:"required,uuid"`
	Title     string    `json:"title" validate:"required,max=120"`
	ColorHex  string    `json:"color_hex,omitempty" validate:"omitempty,hexcolor"`
	CreatedAt time.Time `json:"created_at"`
}
