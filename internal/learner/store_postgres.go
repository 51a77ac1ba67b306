package learner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// Schema creates the progress tables read by PostgresStore.
const Schema = `
CREATE TABLE IF NOT EXISTS students (
	id               TEXT PRIMARY KEY,
	grade            DOUBLE PRECISION,
	career_interests TEXT[] NOT NULL DEFAULT '{}',
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS student_knowledge (
	student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	node_id    TEXT NOT NULL,
	level      INT NOT NULL DEFAULT 0,
	PRIMARY KEY (student_id, node_id)
);

CREATE TABLE IF NOT EXISTS student_skills (
	student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	skill      TEXT NOT NULL,
	level      INT NOT NULL DEFAULT 0,
	PRIMARY KEY (student_id, skill)
);
`

// PostgresStore is a PostgreSQL-backed Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store on top of an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the progress tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	p := NewProfile(id)
	var grade *float64
	var interests []string
	err := s.pool.QueryRow(ctx,
		`SELECT grade, career_interests FROM students WHERE id = $1`,
		id,
	).Scan(&grade, &interests)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Profile{}, fmt.Errorf("get student: %w", err)
	}
	p.Grade = grade
	if interests != nil {
		p.CareerInterests = interests
	}

	profiles := map[string]*Profile{id: &p}
	if err := s.fillKnowledge(ctx, profiles, `WHERE student_id = $1`, id); err != nil {
		return Profile{}, err
	}
	if err := s.fillSkills(ctx, profiles, `WHERE student_id = $1`, id); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, grade, career_interests FROM students ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var order []string
	profiles := map[string]*Profile{}
	for rows.Next() {
		var id string
		var grade *float64
		var interests []string
		if err := rows.Scan(&id, &grade, &interests); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		p := NewProfile(id)
		p.Grade = grade
		if interests != nil {
			p.CareerInterests = interests
		}
		profiles[id] = &p
		order = append(order, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}

	if err := s.fillKnowledge(ctx, profiles, ""); err != nil {
		return nil, err
	}
	if err := s.fillSkills(ctx, profiles, ""); err != nil {
		return nil, err
	}

	out := make([]Profile, 0, len(order))
	for _, id := range order {
		out = append(out, *profiles[id])
	}
	return out, nil
}

func (s *PostgresStore) fillKnowledge(ctx context.Context, profiles map[string]*Profile, where string, args ...any) error {
	rows, err := s.pool.Query(ctx,
		`SELECT student_id, node_id, level FROM student_knowledge `+where,
		args...,
	)
	if err != nil {
		return fmt.Errorf("query knowledge: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var studentID, node string
		var level int
		if err := rows.Scan(&studentID, &node, &level); err != nil {
			return fmt.Errorf("scan knowledge: %w", err)
		}
		if p, ok := profiles[studentID]; ok {
			p.Knowledge[node] = level
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate knowledge: %w", err)
	}
	return nil
}

func (s *PostgresStore) fillSkills(ctx context.Context, profiles map[string]*Profile, where string, args ...any) error {
	rows, err := s.pool.Query(ctx,
		`SELECT student_id, skill, level FROM student_skills `+where,
		args...,
	)
	if err != nil {
		return fmt.Errorf("query skills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var studentID, skill string
		var level int
		if err := rows.Scan(&studentID, &skill, &level); err != nil {
			return fmt.Errorf("scan skill: %w", err)
		}
		if p, ok := profiles[studentID]; ok {
			p.InquirySkills[SkillCode(skill)] = level
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate skills: %w", err)
	}
	return nil
}

// Upsert writes a profile, replacing any knowledge and skill rows it had.
func (s *PostgresStore) Upsert(ctx context.Context, p Profile) error {
	if p.ID == "" {
		return fmt.Errorf("student id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	interests := p.CareerInterests
	if interests == nil {
		interests = []string{}
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO students (id, grade, career_interests, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (id) DO UPDATE
		 SET grade = EXCLUDED.grade,
		     career_interests = EXCLUDED.career_interests,
		     updated_at = NOW()`,
		p.ID, p.Grade, interests,
	); err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM student_knowledge WHERE student_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clear knowledge: %w", err)
	}
	for node, level := range p.Knowledge {
		if _, err := tx.Exec(ctx,
			`INSERT INTO student_knowledge (student_id, node_id, level) VALUES ($1, $2, $3)`,
			p.ID, node, level,
		); err != nil {
			return fmt.Errorf("insert knowledge: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM student_skills WHERE student_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clear skills: %w", err)
	}
	for skill, level := range p.InquirySkills {
		if _, err := tx.Exec(ctx,
			`INSERT INTO student_skills (student_id, skill, level) VALUES ($1, $2, $3)`,
			p.ID, string(skill), level,
		); err != nil {
			return fmt.Errorf("insert skill: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
