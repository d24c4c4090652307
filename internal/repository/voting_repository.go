package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/voting-tool/internal/domain"
	"github.com/godilite/voting-tool/internal/repository/models"
	"github.com/mattn/go-sqlite3"
)

const schema = `
	CREATE TABLE IF NOT EXISTS votings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		voting_id INTEGER NOT NULL REFERENCES votings(id),
		voter TEXT NOT NULL,
		items TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_voting ON submissions(voting_id, id);
`

// VotingRepository stores votings and submissions in a SQL database.
type VotingRepository struct {
	db *sql.DB
}

func NewVotingRepository(db *sql.DB) *VotingRepository {
	return &VotingRepository{db: db}
}

// Migrate creates the tables if they do not exist.
func (s *VotingRepository) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: migrate schema: %v", domain.ErrConnection, err)
	}
	return nil
}

// ListVotings returns voting names in creation order.
func (s *VotingRepository) ListVotings(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM votings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query ListVotings: %v", domain.ErrConnection, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan ListVotings row: %v", domain.ErrConnection, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate ListVotings: %v", domain.ErrConnection, err)
	}
	return names, nil
}

// CreateVoting inserts a new voting. The UNIQUE constraint on name reports
// collisions.
func (s *VotingRepository) CreateVoting(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO votings (name, created_at) VALUES (?, ?)`,
		name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: %q", domain.ErrNameCollision, name)
		}
		return fmt.Errorf("%w: insert voting: %v", domain.ErrStoreWrite, err)
	}
	return nil
}

// Append inserts one submission. The insert selects the voting id so a
// missing voting affects no rows.
func (s *VotingRepository) Append(ctx context.Context, voting string, sub domain.Submission) error {
	items, err := json.Marshal(sub.Items)
	if err != nil {
		return fmt.Errorf("%w: encode items: %v", domain.ErrStoreWrite, err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (voting_id, voter, items, created_at)
		SELECT id, ?, ?, ? FROM votings WHERE name = ?
	`, sub.Voter, string(items), time.Now().UTC().Format(time.RFC3339Nano), voting)
	if err != nil {
		return fmt.Errorf("%w: insert submission: %v", domain.ErrStoreWrite, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: insert submission: %v", domain.ErrStoreWrite, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", domain.ErrNotFound, voting)
	}
	return nil
}

// ReadAll returns the submissions of a voting in insertion order.
func (s *VotingRepository) ReadAll(ctx context.Context, voting string) ([]domain.Submission, error) {
	id, err := s.votingID(ctx, voting)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, voting_id, voter, items
		FROM submissions
		WHERE voting_id = ?
		ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("%w: query ReadAll: %v", domain.ErrConnection, err)
	}
	defer rows.Close()

	subs := []domain.Submission{}
	for rows.Next() {
		var r models.SubmissionRow
		if err := rows.Scan(&r.ID, &r.VotingID, &r.Voter, &r.Items); err != nil {
			return nil, fmt.Errorf("%w: scan ReadAll row: %v", domain.ErrConnection, err)
		}
		sub, err := decodeSubmission(r)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate ReadAll: %v", domain.ErrConnection, err)
	}
	return subs, nil
}

// Clear deletes every submission of a voting.
func (s *VotingRepository) Clear(ctx context.Context, voting string) error {
	id, err := s.votingID(ctx, voting)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM submissions WHERE voting_id = ?`, id); err != nil {
		return fmt.Errorf("%w: clear submissions: %v", domain.ErrStoreWrite, err)
	}
	return nil
}

// Delete removes a voting and its submissions in one transaction.
func (s *VotingRepository) Delete(ctx context.Context, voting string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", domain.ErrConnection, err)
	}
	defer tx.Rollback()

	var r models.VotingRow
	err = tx.QueryRowContext(ctx, `SELECT id, name, created_at FROM votings WHERE name = ?`, voting).
		Scan(&r.ID, &r.Name, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %q", domain.ErrNotFound, voting)
	}
	if err != nil {
		return fmt.Errorf("%w: query voting: %v", domain.ErrConnection, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE voting_id = ?`, r.ID); err != nil {
		return fmt.Errorf("%w: delete submissions: %v", domain.ErrStoreWrite, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM votings WHERE id = ?`, r.ID); err != nil {
		return fmt.Errorf("%w: delete voting: %v", domain.ErrStoreWrite, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit delete: %v", domain.ErrStoreWrite, err)
	}
	return nil
}

func (s *VotingRepository) votingID(ctx context.Context, voting string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM votings WHERE name = ?`, voting).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q", domain.ErrNotFound, voting)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: query voting: %v", domain.ErrConnection, err)
	}
	return id, nil
}

func decodeSubmission(r models.SubmissionRow) (domain.Submission, error) {
	var items []string
	if err := json.Unmarshal([]byte(r.Items), &items); err != nil {
		return domain.Submission{}, fmt.Errorf("%w: submission %d: %v", domain.ErrParse, r.ID, err)
	}
	sub, err := domain.ParseRow(append([]string{r.Voter}, items...))
	if err != nil {
		return domain.Submission{}, fmt.Errorf("submission %d: %w", r.ID, err)
	}
	return sub, nil
}
