package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/storage"
)

const occurrenceSelect = "SELECT id, plan_id, date::text, unit_index, minutes_planned, slot, locked FROM task_occurrences"

// foreignKeyViolation is the SQLSTATE PostgreSQL reports for a dangling reference.
const foreignKeyViolation = "23503"

func (s *Store) SaveOccurrences(occurrences []models.TaskOccurrence) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
INSERT INTO task_occurrences (id, plan_id, date, unit_index, minutes_planned, slot, locked)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT DO NOTHING`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, occ := range occurrences {
		if occ.ID == "" {
			return 0, fmt.Errorf("occurrence on %s has no id", occ.Date)
		}
		res, err := stmt.Exec(occ.ID, occ.PlanID, occ.Date, nullInt(occ.UnitIndex), nullInt(occ.MinutesPlanned), occ.Slot, occ.Locked)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
				return 0, fmt.Errorf("plan %s: %w", occ.PlanID, storage.ErrNotFound)
			}
			return 0, fmt.Errorf("saving occurrence on %s: %w", occ.Date, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func scanOccurrence(row rowScanner) (models.TaskOccurrence, error) {
	var occ models.TaskOccurrence
	var unit, minutes sql.NullInt64
	if err := row.Scan(&occ.ID, &occ.PlanID, &occ.Date, &unit, &minutes, &occ.Slot, &occ.Locked); err != nil {
		return models.TaskOccurrence{}, err
	}
	occ.UnitIndex = intFromNull(unit)
	occ.MinutesPlanned = intFromNull(minutes)
	return occ, nil
}

func (s *Store) GetOccurrence(id string) (models.TaskOccurrence, error) {
	occ, err := scanOccurrence(s.db.QueryRow(occurrenceSelect+" WHERE id = $1", id))
	if err != nil {
		return models.TaskOccurrence{}, notFound(err, "occurrence", id)
	}
	return occ, nil
}

func (s *Store) GetOccurrencesForPlan(planID string) ([]models.TaskOccurrence, error) {
	rows, err := s.db.Query(occurrenceSelect+" WHERE plan_id = $1 ORDER BY date, COALESCE(unit_index, 0), slot", planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TaskOccurrence
	for rows.Next() {
		occ, err := scanOccurrence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, occ)
	}
	return out, rows.Err()
}

func (s *Store) DeleteOccurrence(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var logs int
	if err := tx.QueryRow("SELECT COUNT(*) FROM completion_logs WHERE task_occurrence_id = $1", id).Scan(&logs); err != nil {
		return err
	}
	if logs > 0 {
		return fmt.Errorf("occurrence %s: %w", id, storage.ErrOccurrenceCompleted)
	}

	res, err := tx.Exec("DELETE FROM task_occurrences WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(sql.ErrNoRows, "occurrence", id)
	}
	return tx.Commit()
}

func (s *Store) AddCompletion(c models.CompletionLog) error {
	_, err := s.db.Exec(
		"INSERT INTO completion_logs (id, task_occurrence_id, completed_utc, minutes_actual, notes) VALUES ($1, $2, $3, $4, $5)",
		c.ID, c.TaskOccurrenceID, c.CompletedUTC.UTC(), nullInt(c.MinutesActual), c.Notes,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return fmt.Errorf("occurrence %s: %w", c.TaskOccurrenceID, storage.ErrNotFound)
	}
	return err
}

func (s *Store) GetCompletionsForPlan(planID string) ([]models.CompletionLog, error) {
	rows, err := s.db.Query(`
SELECT c.id, c.task_occurrence_id, c.completed_utc, c.minutes_actual, c.notes
FROM completion_logs c
JOIN task_occurrences o ON o.id = c.task_occurrence_id
WHERE o.plan_id = $1
ORDER BY c.completed_utc, c.id`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CompletionLog
	for rows.Next() {
		var c models.CompletionLog
		var minutes sql.NullInt64
		if err := rows.Scan(&c.ID, &c.TaskOccurrenceID, &c.CompletedUTC, &minutes, &c.Notes); err != nil {
			return nil, err
		}
		c.CompletedUTC = c.CompletedUTC.UTC()
		c.MinutesActual = intFromNull(minutes)
		out = append(out, c)
	}
	return out, rows.Err()
}
