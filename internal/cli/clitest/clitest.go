// Package clitest provides fixtures shared by the command package tests.
package clitest

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/hsplan/internal/cli"
	"github.com/julianstephens/hsplan/internal/constants"
	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/scheduler"
	"github.com/julianstephens/hsplan/internal/storage/sqlite"
	"github.com/julianstephens/hsplan/internal/validation"
)

// Created is the timestamp given to every seeded record.
var Created = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

// NewContext returns a context over a fresh SQLite database in a temp dir.
// Command output is captured in the returned buffer and every confirmation is answered with yes.
func NewContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "hsplan.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	out := &bytes.Buffer{}
	return &cli.Context{
		Store:     store,
		Scheduler: scheduler.New(),
		Validator: validation.New(),
		Out:       out,
		Confirm:   func(string, string) (bool, error) { return true, nil },
	}, out
}

// Fixture is a learner with one subject, one book resource and one plan over it.
type Fixture struct {
	Learner  models.Learner
	Subject  models.Subject
	Resource models.Resource
	Plan     models.Plan
}

// Seed creates a Fixture whose book has units lessons and whose push plan
// runs over the weekdays of January 2025.
func Seed(t *testing.T, ctx *cli.Context, units int) Fixture {
	t.Helper()
	f := Fixture{
		Learner: models.Learner{ID: uuid.NewString(), Name: "Ada", Grade: "4", CreatedAt: Created},
	}
	f.Subject = models.Subject{ID: uuid.NewString(), LearnerID: f.Learner.ID, Title: "Math", CreatedAt: Created}
	f.Resource = models.Resource{
		ID:        uuid.NewString(),
		SubjectID: f.Subject.ID,
		Kind:      constants.ResourceKindBook,
		Title:     "Saxon 5/4",
		CreatedAt: Created,
	}
	f.Plan = models.Plan{
		ID:              uuid.NewString(),
		ResourceID:      f.Resource.ID,
		StartDate:       "2025-01-01",
		EndDate:         "2025-01-31",
		AllowedDaysMask: constants.WeekdaysMask,
		Strategy:        constants.StrategyPush,
		LookaheadDays:   constants.DefaultLookaheadDays,
		CreatedAt:       Created,
	}

	if err := ctx.Store.AddLearner(f.Learner); err != nil {
		t.Fatalf("AddLearner: %v", err)
	}
	if err := ctx.Store.AddSubject(f.Subject); err != nil {
		t.Fatalf("AddSubject: %v", err)
	}
	if err := ctx.Store.AddResource(f.Resource); err != nil {
		t.Fatalf("AddResource: %v", err)
	}
	if units > 0 {
		labels := make([]string, units)
		for i := range labels {
			labels[i] = "Lesson"
		}
		if _, err := ctx.Store.AppendUnits(f.Resource.ID, labels); err != nil {
			t.Fatalf("AppendUnits: %v", err)
		}
	}
	if err := ctx.Store.AddPlan(f.Plan); err != nil {
		t.Fatalf("AddPlan: %v", err)
	}
	return f
}
