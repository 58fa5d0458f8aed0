package sqlite

import (
	"github.com/julianstephens/hsplan/internal/models"
)

func (s *Store) AddLearner(l models.Learner) error {
	_, err := s.db.Exec(
		"INSERT INTO learners (id, name, grade, created_at) VALUES (?, ?, ?, ?)",
		l.ID, l.Name, l.Grade, formatTime(l.CreatedAt),
	)
	return err
}

func (s *Store) GetLearner(id string) (models.Learner, error) {
	var l models.Learner
	var created string
	err := s.db.QueryRow("SELECT id, name, grade, created_at FROM learners WHERE id = ?", id).
		Scan(&l.ID, &l.Name, &l.Grade, &created)
	if err != nil {
		return models.Learner{}, notFound(err, "learner", id)
	}
	l.CreatedAt = parseTime(created)
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
		var created string
		if err := rows.Scan(&l.ID, &l.Name, &l.Grade, &created); err != nil {
			return nil, err
		}
		l.CreatedAt = parseTime(created)
		learners = append(learners, l)
	}
	return learners, rows.Err()
}

func (s *Store) AddSubject(sub models.Subject) error {
	_, err := s.db.Exec(
		"INSERT INTO subjects (id, learner_id, title, color_hex, created_at) VALUES (?, ?, ?, ?, ?)",
		sub.ID, sub.LearnerID, sub.Title, sub.ColorHex, formatTime(sub.CreatedAt),
	)
	return err
}

func (s *Store) GetSubject(id string) (models.Subject, error) {
	var sub models.Subject
	var created string
	err := s.db.QueryRow("SELECT id, learner_id, title, color_hex, created_at FROM subjects WHERE id = ?", id).
		Scan(&sub.ID, &sub.LearnerID, &sub.Title, &sub.ColorHex, &created)
	if err != nil {
		return models.Subject{}, notFound(err, "subject", id)
	}
	sub.CreatedAt = parseTime(created)
	return sub, nil
}

func (s *Store) GetSubjectsForLearner(learnerID string) ([]models.Subject, error) {
	rows, err := s.db.Query(
		"SELECT id, learner_id, title, color_hex, created_at FROM subjects WHERE learner_id = ? ORDER BY title, id",
		learnerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		var sub models.Subject
		var created string
		if err := rows.Scan(&sub.ID, &sub.LearnerID, &sub.Title, &sub.ColorHex, &created); err != nil {
			return nil, err
		}
		sub.CreatedAt = parseTime(created)
		subjects = append(subjects, sub)
	}
	return subjects, rows.Err()
}
