package httpapi

import (
	"context"

	"github.com/godilite/voting-tool/internal/domain"
	"github.com/godilite/voting-tool/internal/service"
)

type VotingService interface {
	ListVotings(ctx context.Context) ([]string, error)
	CreateVoting(ctx context.Context, name string) (string, error)
	ClearVoting(ctx context.Context, name string) error
	DeleteVoting(ctx context.Context, name string) error
	Submit(ctx context.Context, voting, voter string, items []string) (domain.Submission, error)
	Submissions(ctx context.Context, voting string) ([]domain.Submission, error)
	Ranking(ctx context.Context, voting string) ([]service.RankingEntry, error)
}

// SessionStore remembers the active voting per client session.
type SessionStore interface {
	Select(ctx context.Context, id, voting string) error
	Active(ctx context.Context, id string) (string, error)
	Forget(ctx context.Context, id string) error
}
