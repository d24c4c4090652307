package mocks

import (
	"context"
	"errors"

	"github.com/godilite/voting-tool/internal/domain"
)

// MockVotingStore is a mock implementation of the VotingStore interface
// for testing the service layer.
type MockVotingStore struct {
	ListVotingsFunc  func(ctx context.Context) ([]string, error)
	CreateVotingFunc func(ctx context.Context, name string) error
	AppendFunc       func(ctx context.Context, voting string, sub domain.Submission) error
	ReadAllFunc      func(ctx context.Context, voting string) ([]domain.Submission, error)
	ClearFunc        func(ctx context.Context, voting string) error
	DeleteFunc       func(ctx context.Context, voting string) error
}

// ListVotings implements the VotingStore interface
func (m *MockVotingStore) ListVotings(ctx context.Context) ([]string, error) {
	if m.ListVotingsFunc != nil {
		return m.ListVotingsFunc(ctx)
	}
	return nil, errors.New("ListVotingsFunc not implemented")
}

// CreateVoting implements the VotingStore interface
func (m *MockVotingStore) CreateVoting(ctx context.Context, name string) error {
	if m.CreateVotingFunc != nil {
		return m.CreateVotingFunc(ctx, name)
	}
	return errors.New("CreateVotingFunc not implemented")
}

// Append implements the VotingStore interface
func (m *MockVotingStore) Append(ctx context.Context, voting string, sub domain.Submission) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, voting, sub)
	}
	return errors.New("AppendFunc not implemented")
}

// ReadAll implements the VotingStore interface
func (m *MockVotingStore) ReadAll(ctx context.Context, voting string) ([]domain.Submission, error) {
	if m.ReadAllFunc != nil {
		return m.ReadAllFunc(ctx, voting)
	}
	return nil, errors.New("ReadAllFunc not implemented")
}

// Clear implements the VotingStore interface
func (m *MockVotingStore) Clear(ctx context.Context, voting string) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, voting)
	}
	return errors.New("ClearFunc not implemented")
}

// Delete implements the VotingStore interface
func (m *MockVotingStore) Delete(ctx context.Context, voting string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, voting)
	}
	return errors.New("DeleteFunc not implemented")
}
