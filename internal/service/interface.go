package service

import (
	"context"

	"github.com/godilite/voting-tool/internal/domain"
)

// VotingStore defines the record store operations the service depends on.
// Implementations return the domain sentinel errors.
type VotingStore interface {
	ListVotings(ctx context.Context) ([]string, error)
	CreateVoting(ctx context.Context, name string) error
	Append(ctx context.Context, voting string, sub domain.Submission) error
	ReadAll(ctx context.Context, voting string) ([]domain.Submission, error)
	Clear(ctx context.Context, voting string) error
	Delete(ctx context.Context, voting string) error
}
