package mocks

import (
	"context"
	"errors"

	"github.com/godilite/voting-tool/internal/domain"
	"github.com/godilite/voting-tool/internal/service"
)

// MockVotingService is a mock implementation of the VotingService interface
// for testing the transport layers. It uses function-based mocking for flexibility.
type MockVotingService struct {
	ListVotingsFunc  func(ctx context.Context) ([]string, error)
	CreateVotingFunc func(ctx context.Context, name string) (string, error)
	ClearVotingFunc  func(ctx context.Context, name string) error
	DeleteVotingFunc func(ctx context.Context, name string) error
	SubmitFunc       func(ctx context.Context, voting, voter string, items []string) (domain.Submission, error)
	SubmissionsFunc  func(ctx context.Context, voting string) ([]domain.Submission, error)
	RankingFunc      func(ctx context.Context, voting string) ([]service.RankingEntry, error)
}

// ListVotings implements the VotingService interface
func (m *MockVotingService) ListVotings(ctx context.Context) ([]string, error) {
	if m.ListVotingsFunc != nil {
		return m.ListVotingsFunc(ctx)
	}
	return nil, errors.New("ListVotingsFunc not implemented")
}

// CreateVoting implements the VotingService interface
func (m *MockVotingService) CreateVoting(ctx context.Context, name string) (string, error) {
	if m.CreateVotingFunc != nil {
		return m.CreateVotingFunc(ctx, name)
	}
	return "", errors.New("CreateVotingFunc not implemented")
}

// ClearVoting implements the VotingService interface
func (m *MockVotingService) ClearVoting(ctx context.Context, name string) error {
	if m.ClearVotingFunc != nil {
		return m.ClearVotingFunc(ctx, name)
	}
	return errors.New("ClearVotingFunc not implemented")
}

// DeleteVoting implements the VotingService interface
func (m *MockVotingService) DeleteVoting(ctx context.Context, name string) error {
	if m.DeleteVotingFunc != nil {
		return m.DeleteVotingFunc(ctx, name)
	}
	return errors.New("DeleteVotingFunc not implemented")
}

// Submit implements the VotingService interface
func (m *MockVotingService) Submit(ctx context.Context, voting, voter string, items []string) (domain.Submission, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, voting, voter, items)
	}
	return domain.Submission{}, errors.New("SubmitFunc not implemented")
}

// Submissions implements the VotingService interface
func (m *MockVotingService) Submissions(ctx context.Context, voting string) ([]domain.Submission, error) {
	if m.SubmissionsFunc != nil {
		return m.SubmissionsFunc(ctx, voting)
	}
	return nil, errors.New("SubmissionsFunc not implemented")
}

// Ranking implements the VotingService interface
func (m *MockVotingService) Ranking(ctx context.Context, voting string) ([]service.RankingEntry, error) {
	if m.RankingFunc != nil {
		return m.RankingFunc(ctx, voting)
	}
	return nil, errors.New("RankingFunc not implemented")
}
