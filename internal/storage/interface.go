package storage

import "github.com/julianstephens/hsplan/internal/models"

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Learners and subjects
	AddLearner(models.Learner) error
	GetLearner(id string) (models.Learner, error)
	GetAllLearners() ([]models.Learner, error)
	AddSubject(models.Subject) error
	GetSubject(id string) (models.Subject, error)
	GetSubjectsForLearner(learnerID string) ([]models.Subject, error)

	// Resources
	AddResource(models.Resource) error
	GetResource(id string) (models.Resource, error)
	GetResourcesForSubject(subjectID string) ([]models.Resource, error)
	// AppendUnits adds labels to the end of the resource's catalog. The i-th
	// label gets index existing+i+1. It returns the created units.
	AppendUnits(resourceID string, labels []string) ([]models.ResourceUnit, error)
	GetUnits(resourceID string) ([]models.ResourceUnit, error)
	CountUnits(resourceID string) (int, error)

	// Plans
	AddPlan(models.Plan) error
	GetPlan(id string) (models.Plan, error)
	GetAllPlans() ([]models.Plan, error)
	GetPlansForResource(resourceID string) ([]models.Plan, error)

	// Occurrences
	// SaveOccurrences inserts occurrences and skips any whose
	// (plan, date, unit index) slot is already taken. It returns how many were inserted.
	SaveOccurrences([]models.TaskOccurrence) (int, error)
	GetOccurrence(id string) (models.TaskOccurrence, error)
	GetOccurrencesForPlan(planID string) ([]models.TaskOccurrence, error)
	// DeleteOccurrence removes an occurrence that has no completion logs.
	DeleteOccurrence(id string) error

	// Completions
	AddCompletion(models.CompletionLog) error
	GetCompletionsForPlan(planID string) ([]models.CompletionLog, error)

	// Utils
	GetConfigPath() string
}
