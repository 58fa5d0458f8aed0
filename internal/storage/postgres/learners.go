package postgres

import "github.com/julianstephens/hsplan/internal/models"

func (s *Store) AddLearner(l models.Learner) error {
	_, err := s.db.Exec(
		"INSERT INTO learners (id, name, grade, created_at) VALUES ($1, $2, $3, $4)",
		l.ID, l.Name, l.Grade, l.CreatedAt.UTC(),
	)
	return err
}

func (s *Store) GetLearner(id string) (models.Learner, error) {
	var l models.Learner
	err := s.db.QueryRow("SELECT id, name, grade, created_at FROM learners WHERE id = $1", id).
		Scan(&l.ID, &l.Name, &l.Grade, &l.CreatedAt)
	if err != nil {
		return models.Learner{}, notFound(err, "learner", id)
	}
	l.CreatedAt = l.CreatedAt.UTC()
	return l, nil
}

func (s *Store) GetAllLearners() ([]models.Learner, error) {
	rows, err := s.db.Query("SELECT id, name, grade, created_at FROM learners ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var learners []models.Learner
	for rows.Next() {
		var l models.Learner
		if err := rows.Scan(&l.ID, &l.Name, &l.Grade, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.CreatedAt = l.CreatedAt.UTC()
		learners = append(learners, l)
	}
	return learners, rows.Err()
}

func (s *Store) AddSubject(sub models.Subject) error {
	_, err := s.db.Exec(
		"INSERT INTO subjects (id, learner_id, title, color_hex, created_at) VALUES ($1, $2, $3, $4, $5)",
		sub.ID, sub.LearnerID, sub.Title, sub.ColorHex, sub.CreatedAt.UTC(),
	)
	return err
}

func (s *Store) GetSubject(id string) (models.Subject, error) {
	var sub models.Subject
	err := s.db.QueryRow("SELECT id, learner_id, title, color_hex, created_at FROM subjects WHERE id = $1", id).
		Scan(&sub.ID, &sub.LearnerID, &sub.Title, &sub.ColorHex, &sub.CreatedAt)
	if err != nil {
		return models.Subject{}, notFound(err, "subject", id)
	}
	sub.CreatedAt = sub.CreatedAt.UTC()
	return sub, nil
}

func (s *Store) GetSubjectsForLearner(learnerID string) ([]models.Subject, error) {
	rows, err := s.db.Query(
		"SELECT id, learner_id, title, color_hex, created_at FROM subjects WHERE learner_id = $1 ORDER BY title, id",
		learnerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		var sub models.Subject
		if err := rows.Scan(&sub.ID, &sub.LearnerID, &sub.Title, &sub.ColorHex, &sub.CreatedAt); err != nil {
			return nil, err
		}
		sub.CreatedAt = sub.CreatedAt.UTC()
		subjects = append(subjects, sub)
	}
	return subjects, rows.Err()
}
