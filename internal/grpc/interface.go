package grpc

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
	Ranking(ctx context.Context, voting string) ([]service.RankingEntry, error)
}
