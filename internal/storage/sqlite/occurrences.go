package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/storage"
)

const occurrenceColumns = "id, plan_id, date, unit_index, minutes_planned, slot, locked"

func (s *Store) SaveOccurrences(occurrences []models.TaskOccurrence) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO task_occurrences (" + occurrenceColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)")
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
	occ, err := scanOccurrence(s.db.QueryRow("SELECT "+occurrenceColumns+" FROM task_occurrences WHERE id = ?", id))
	if err != nil {
		return models.TaskOccurrence{}, notFound(err, "occurrence", id)
	}
	return occ, nil
}

func (s *Store) GetOccurrencesForPlan(planID string) ([]models.TaskOccurrence, error) {
	rows, err := s.db.Query(
		"SELECT "+occurrenceColumns+" FROM task_occurrences WHERE plan_id = ? ORDER BY date, COALESCE(unit_index, 0), slot",
		planID,
	)
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
	if err := tx.QueryRow("SELECT COUNT(*) FROM completion_logs WHERE task_occurrence_id = ?", id).Scan(&logs); err != nil {
		return err
	}
	if logs > 0 {
		return fmt.Errorf("occurrence %s: %w", id, storage.ErrOccurrenceCompleted)
	}

	res, err := tx.Exec("DELETE FROM task_occurrences WHERE id = ?", id)
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
		"INSERT INTO completion_logs (id, task_occurrence_id, completed_utc, minutes_actual, notes) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.TaskOccurrenceID, formatTime(c.CompletedUTC), nullInt(c.MinutesActual), c.Notes,
	)
	return err
}

func (s *Store) GetCompletionsForPlan(planID string) ([]models.CompletionLog, error) {
	rows, err := s.db.Query(`
SELECT c.id, c.task_occurrence_id, c.completed_utc, c.minutes_actual, c.notes
FROM completion_logs c
JOIN task_occurrences o ON o.id = c.task_occurrence_id
WHERE o.plan_id = ?
ORDER BY c.completed_utc, c.id`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CompletionLog
	for rows.Next() {
		var c models.CompletionLog
		var completed string
		var minutes sql.NullInt64
		if err := rows.Scan(&c.ID, &c.TaskOccurrenceID, &completed, &minutes, &c.Notes); err != nil {
			return nil, err
		}
		c.CompletedUTC = parseTime(completed)
		c.MinutesActual = intFromNull(minutes)
		out = append(out, c)
	}
	return out, rows.Err()
}
