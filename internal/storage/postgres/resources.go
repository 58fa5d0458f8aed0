package postgres

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/hsplan/internal/constants"
	"github.com/julianstephens/hsplan/internal/models"
)

const resourceColumns = "id, subject_id, kind, title, minutes_per_occurrence, max_units_per_day, created_at"

func (s *Store) AddResource(r models.Resource) error {
	_, err := s.db.Exec(
		"INSERT INTO resources ("+resourceColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		r.ID, r.SubjectID, string(r.Kind), r.Title,
		nullInt(r.MinutesPerOccurrence), nullInt(r.MaxUnitsPerDay), r.CreatedAt.UTC(),
	)
	return err
}

func scanResource(row rowScanner) (models.Resource, error) {
	var r models.Resource
	var kind string
	var minutes, maxPerDay sql.NullInt64
	if err := row.Scan(&r.ID, &r.SubjectID, &kind, &r.Title, &minutes, &maxPerDay, &r.CreatedAt); err != nil {
		return models.Resource{}, err
	}
	r.Kind = constants.ResourceKind(kind)
	r.MinutesPerOccurrence = intFromNull(minutes)
	r.MaxUnitsPerDay = intFromNull(maxPerDay)
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

func (s *Store) GetResource(id string) (models.Resource, error) {
	r, err := scanResource(s.db.QueryRow("SELECT "+resourceColumns+" FROM resources WHERE id = $1", id))
	if err != nil {
		return models.Resource{}, notFound(err, "resource", id)
	}
	return r, nil
}

func (s *Store) GetResourcesForSubject(subjectID string) ([]models.Resource, error) {
	rows, err := s.db.Query("SELECT "+resourceColumns+" FROM resources WHERE subject_id = $1 ORDER BY title, id", subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []models.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

// AppendUnits locks the resource row so concurrent appends cannot hand out the same index.
func (s *Store) AppendUnits(resourceID string, labels []string) ([]models.ResourceUnit, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var id string
	if err := tx.QueryRow("SELECT id FROM resources WHERE id = $1 FOR UPDATE", resourceID).Scan(&id); err != nil {
		return nil, notFound(err, "resource", resourceID)
	}

	var existing int
	if err := tx.QueryRow("SELECT COUNT(*) FROM resource_units WHERE resource_id = $1", resourceID).Scan(&existing); err != nil {
		return nil, err
	}

	units := make([]models.ResourceUnit, 0, len(labels))
	for i, label := range labels {
		u := models.ResourceUnit{
			ID:         uuid.NewString(),
			ResourceID: resourceID,
			Index:      existing + i + 1,
			Label:      label,
		}
		if _, err := tx.Exec(
			"INSERT INTO resource_units (id, resource_id, unit_index, label) VALUES ($1, $2, $3, $4)",
			u.ID, u.ResourceID, u.Index, u.Label,
		); err != nil {
			return nil, fmt.Errorf("adding unit %d: %w", u.Index, err)
		}
		units = append(units, u)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return units, nil
}

func (s *Store) GetUnits(resourceID string) ([]models.ResourceUnit, error) {
	rows, err := s.db.Query(
		"SELECT id, resource_id, unit_index, label FROM resource_units WHERE resource_id = $1 ORDER BY unit_index",
		resourceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []models.ResourceUnit
	for rows.Next() {
		var u models.ResourceUnit
		if err := rows.Scan(&u.ID, &u.ResourceID, &u.Index, &u.Label); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (s *Store) CountUnits(resourceID string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM resource_units WHERE resource_id = $1", resourceID).Scan(&n)
	return n, err
}
