package leads

import (
	"context"
	"time"

	"persona/internal/db"
)

// Store keeps what the recorder tools capture: visitor contact details and
// questions the agent could not answer. The conversation transcript itself
// is never written here.
type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

type Lead struct {
	ID        int64
	Email     string
	Name      string
	Notes     string
	CreatedAt time.Time
}

type UnknownQuestion struct {
	ID        int64
	Question  string
	CreatedAt time.Time
}

func (s *Store) SaveLead(ctx context.Context, email, name, notes string) error {
	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO leads (email, name, notes) VALUES (?, ?, ?)`,
		email, name, notes)
	return err
}

func (s *Store) SaveUnknownQuestion(ctx context.Context, question string) error {
	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO unknown_questions (question) VALUES (?)`,
		question)
	return err
}

func (s *Store) ListLeads(ctx context.Context) ([]Lead, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, email, name, notes, created_at FROM leads ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		var l Lead
		if err := rows.Scan(&l.ID, &l.Email, &l.Name, &l.Notes, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) ListUnknownQuestions(ctx context.Context) ([]UnknownQuestion, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, question, created_at FROM unknown_questions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UnknownQuestion
	for rows.Next() {
		var q UnknownQuestion
		if err := rows.Scan(&q.ID, &q.Question, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
