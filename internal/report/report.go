// Package report builds the weekly progress CSV for a learner.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/utils"
)

// Source is the slice of storage.Provider the report reads.
type Source interface {
	GetSubjectsForLearner(learnerID string) ([]models.Subject, error)
	GetResourcesForSubject(subjectID string) ([]models.Resource, error)
	GetPlansForResource(resourceID string) ([]models.Plan, error)
	GetOccurrencesForPlan(planID string) ([]models.TaskOccurrence, error)
	GetCompletionsForPlan(planID string) ([]models.CompletionLog, error)
}

var Header = []string{"date", "subject", "resource", "planned", "done"}

// Row is one (date, subject, resource) line of the weekly report.
type Row struct {
	Date     string
	Subject  string
	Resource string
	Planned  int
	Done     int
}

// Weekly tallies persisted occurrences and their completions for the seven
// days starting at from, across every plan of the learner.
func Weekly(src Source, learnerID, from string) ([]Row, error) {
	start, err := utils.ParseDate(from)
	if err != nil {
		return nil, err
	}
	to := utils.FormatDate(utils.AddDays(start, 6))

	type key struct{ date, subject, resource string }
	tally := make(map[key]*Row)

	subjects, err := src.GetSubjectsForLearner(learnerID)
	if err != nil {
		return nil, fmt.Errorf("loading subjects: %w", err)
	}
	for _, subject := range subjects {
		resources, err := src.GetResourcesForSubject(subject.ID)
		if err != nil {
			return nil, fmt.Errorf("loading resources of %s: %w", subject.Title, err)
		}
		for _, resource := range resources {
			plans, err := src.GetPlansForResource(resource.ID)
			if err != nil {
				return nil, fmt.Errorf("loading plans of %s: %w", resource.Title, err)
			}
			for _, plan := range plans {
				occurrences, err := src.GetOccurrencesForPlan(plan.ID)
				if err != nil {
					return nil, err
				}
				completions, err := src.GetCompletionsForPlan(plan.ID)
				if err != nil {
					return nil, err
				}
				done := make(map[string]bool, len(completions))
				for _, c := range completions {
					done[c.TaskOccurrenceID] = true
				}

				for _, occ := range occurrences {
					if occ.Date < from || occ.Date > to {
						continue
					}
					k := key{occ.Date, subject.Title, resource.Title}
					row, ok := tally[k]
					if !ok {
						row = &Row{Date: occ.Date, Subject: subject.Title, Resource: resource.Title}
						tally[k] = row
					}
					row.Planned++
					if done[occ.ID] {
						row.Done++
					}
				}
			}
		}
	}

	rows := make([]Row, 0, len(tally))
	for _, r := range tally {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		return a.Resource < b.Resource
	})
	return rows, nil
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{r.Date, r.Subject, r.Resource, strconv.Itoa(r.Planned), strconv.Itoa(r.Done)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
