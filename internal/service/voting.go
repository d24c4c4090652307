package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/godilite/voting-tool/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	storeTimeout = 10 * time.Second
)

// VotingService handles submissions, voting administration and ranking
// aggregation on top of a VotingStore.
type VotingService struct {
	storage VotingStore
	logger  *zap.Logger
	sfGroup singleflight.Group
	writes  writeGenerations
}

// writeGenerations counts completed writes per voting. Ranking reads are
// only shared between callers that saw the same count.
type writeGenerations struct {
	mu   sync.Mutex
	gens map[string]uint64
}

func (g *writeGenerations) current(voting string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[voting]
}

func (g *writeGenerations) bump(voting string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gens == nil {
		g.gens = make(map[string]uint64)
	}
	g.gens[voting]++
}

// NewVotingService creates a new VotingService instance.
func NewVotingService(storage VotingStore, logger *zap.Logger) *VotingService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &VotingService{
		storage: storage,
		logger:  logger,
	}
}

// storeError tags err with the operation and maps an expired store deadline
// to ErrConnection.
func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrConnection) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConnection, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ListVotings returns the names of all votings.
func (s *VotingService) ListVotings(ctx context.Context) ([]string, error) {
	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	names, err := s.storage.ListVotings(dbCtx)
	if err != nil {
		return nil, storeError("list votings", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// CreateVoting creates an empty voting. An existing name is rejected with
// ErrNameCollision.
func (s *VotingService) CreateVoting(ctx context.Context, name string) (string, error) {
	name, err := domain.NormalizeVotingName(name)
	if err != nil {
		return "", err
	}

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	err = s.storage.CreateVoting(dbCtx, name)
	s.writes.bump(name)
	if err != nil {
		return "", storeError("create voting", err)
	}

	s.logger.Info("voting created", zap.String("voting", name))
	return name, nil
}

// ClearVoting removes every submission but keeps the voting selectable.
func (s *VotingService) ClearVoting(ctx context.Context, name string) error {
	name, err := domain.NormalizeVotingName(name)
	if err != nil {
		return err
	}

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	err = s.storage.Clear(dbCtx, name)
	s.writes.bump(name)
	if err != nil {
		return storeError("clear voting", err)
	}

	s.logger.Info("voting cleared", zap.String("voting", name))
	return nil
}

// DeleteVoting removes the voting and all its submissions.
func (s *VotingService) DeleteVoting(ctx context.Context, name string) error {
	name, err := domain.NormalizeVotingName(name)
	if err != nil {
		return err
	}

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	err = s.storage.Delete(dbCtx, name)
	s.writes.bump(name)
	if err != nil {
		return storeError("delete voting", err)
	}

	s.logger.Info("voting deleted", zap.String("voting", name))
	return nil
}

// Submit validates a ballot and appends it to the voting. Invalid ballots
// never reach the store.
func (s *VotingService) Submit(ctx context.Context, voting, voter string, items []string) (domain.Submission, error) {
	voting, err := domain.NormalizeVotingName(voting)
	if err != nil {
		return domain.Submission{}, err
	}

	sub, err := domain.NewSubmission(voter, items)
	if err != nil {
		s.logger.Debug("submission rejected", zap.String("voting", voting), zap.Error(err))
		return domain.Submission{}, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	err = s.storage.Append(dbCtx, voting, sub)
	s.writes.bump(voting)
	if err != nil {
		s.logger.Error("failed to store submission",
			zap.String("voting", voting),
			zap.String("voter", sub.Voter),
			zap.Error(err))
		return domain.Submission{}, storeError("append submission", err)
	}

	s.logger.Info("submission stored", zap.String("voting", voting), zap.String("voter", sub.Voter))
	return sub, nil
}

// Submissions returns every stored ballot of the voting in insertion order.
func (s *VotingService) Submissions(ctx context.Context, voting string) ([]domain.Submission, error) {
	voting, err := domain.NormalizeVotingName(voting)
	if err != nil {
		return nil, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	subs, err := s.storage.ReadAll(dbCtx, voting)
	if err != nil {
		return nil, storeError("read submissions", err)
	}
	if subs == nil {
		subs = []domain.Submission{}
	}
	return subs, nil
}
