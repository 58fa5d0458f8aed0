package sqlite

import (
	"github.com/julianstephens/hsplan/internal/constants"
	"github.com/julianstephens/hsplan/internal/models"
)

const planColumns = "id, resource_id, start_date, end_date, allowed_days_mask, strategy, lookahead_days, created_at"

func (s *Store) AddPlan(p models.Plan) error {
	_, err := s.db.Exec(
		"INSERT INTO plans ("+planColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.ResourceID, p.StartDate, p.EndDate, p.AllowedDaysMask,
		string(p.Strategy), p.LookaheadDays, formatTime(p.CreatedAt),
	)
	return err
}

func scanPlan(row rowScanner) (models.Plan, error) {
	var p models.Plan
	var strategy, created string
	if err := row.Scan(&p.ID, &p.ResourceID, &p.StartDate, &p.EndDate, &p.AllowedDaysMask, &strategy, &p.LookaheadDays, &created); err != nil {
		return models.Plan{}, err
	}
	p.Strategy = constants.Strategy(strategy)
	p.CreatedAt = parseTime(created)
	return p, nil
}

func (s *Store) GetPlan(id string) (models.Plan, error) {
	p, err := scanPlan(s.db.QueryRow("SELECT "+planColumns+" FROM plans WHERE id = ?", id))
	if err != nil {
		return models.Plan{}, notFound(err, "plan", id)
	}
	return p, nil
}

func (s *Store) queryPlans(query string, args ...any) ([]models.Plan, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *Store) GetAllPlans() ([]models.Plan, error) {
	return s.queryPlans("SELECT " + planColumns + " FROM plans ORDER BY start_date, id")
}

func (s *Store) GetPlansForResource(resourceID string) ([]models.Plan, error) {
	return s.queryPlans("SELECT "+planColumns+" FROM plans WHERE resource_id = ? ORDER BY start_date, id", resourceID)
}
