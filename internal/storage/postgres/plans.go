package postgres

import (
	"github.com/julianstephens/hsplan/internal/constants"
	"github.com/julianstephens/hsplan/internal/models"
)

// DATE columns are read back as text so they keep the YYYY-MM-DD form.
const planSelect = `SELECT id, resource_id, start_date::text, end_date::text, allowed_days_mask,
       strategy, lookahead_days, created_at
FROM plans`

func (s *Store) AddPlan(p models.Plan) error {
	_, err := s.db.Exec(`
INSERT INTO plans (id, resource_id, start_date, end_date, allowed_days_mask, strategy, lookahead_days, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.ResourceID, p.StartDate, p.EndDate, p.AllowedDaysMask,
		string(p.Strategy), p.LookaheadDays, p.CreatedAt.UTC(),
	)
	return err
}

func scanPlan(row rowScanner) (models.Plan, error) {
	var p models.Plan
	var strategy string
	if err := row.Scan(&p.ID, &p.ResourceID, &p.StartDate, &p.EndDate, &p.AllowedDaysMask, &strategy, &p.LookaheadDays, &p.CreatedAt); err != nil {
		return models.Plan{}, err
	}
	p.Strategy = constants.Strategy(strategy)
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (s *Store) GetPlan(id string) (models.Plan, error) {
	p, err := scanPlan(s.db.QueryRow(planSelect+" WHERE id = $1", id))
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
	return s.queryPlans(planSelect + " ORDER BY start_date, id")
}

func (s *Store) GetPlansForResource(resourceID string) ([]models.Plan, error) {
	return s.queryPlans(planSelect+" WHERE resource_id = $1 ORDER BY start_date, id", resourceID)
}
