package grpc

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/godilite/voting-tool/internal/domain"
	"github.com/godilite/voting-tool/internal/export"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const defaultGRPCTimeout = 10 * time.Second

type GRPCHandlers struct {
	votings VotingService
	logger  *zap.Logger
}

var _ VotingToolServer = (*GRPCHandlers)(nil)

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(votings VotingService, logger *zap.Logger) *GRPCHandlers {
	if votings == nil {
		panic("nil VotingService provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandlers{
		votings: votings,
		logger:  logger.Named("grpc-handler"),
	}
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, domain.ErrInvalidSubmission), errors.Is(err, domain.ErrInvalidName):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Info("voting not found", zap.String("op", op), zap.Error(err))
		return status.Error(codes.NotFound, "voting not found, select another voting")
	case errors.Is(err, domain.ErrNameCollision):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrConnection):
		s.logger.Error("store unreachable", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Unavailable, "store unreachable, try again later")
	case errors.Is(err, domain.ErrStoreWrite):
		s.logger.Error("store write failed", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "ballot not saved, please resubmit")
	case errors.Is(err, domain.ErrParse):
		s.logger.Error("malformed record", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.DataLoss, "stored data is malformed: %v", err)
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) ListVotings(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	names, err := s.votings.ListVotings(ctx)
	if err != nil {
		return nil, s.handleError(ctx, "ListVotings", err)
	}

	resp, err := structpb.NewStruct(map[string]any{"votings": anyList(names)})
	if err != nil {
		return nil, s.handleError(ctx, "ListVotings", err)
	}
	return resp, nil
}

func (s *GRPCHandlers) CreateVoting(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := stringField(req, "name")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	name, err = s.votings.CreateVoting(ctx, name)
	if err != nil {
		return nil, s.handleError(ctx, "CreateVoting", err)
	}
	return structpb.NewStruct(map[string]any{"name": name})
}

func (s *GRPCHandlers) ClearVoting(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	name, err := stringField(req, "name")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	if err := s.votings.ClearVoting(ctx, name); err != nil {
		return nil, s.handleError(ctx, "ClearVoting", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCHandlers) DeleteVoting(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	name, err := stringField(req, "name")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	if err := s.votings.DeleteVoting(ctx, name); err != nil {
		return nil, s.handleError(ctx, "DeleteVoting", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCHandlers) SubmitBallot(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	voting, err := stringField(req, "voting")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	voter, err := stringField(req, "voter")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	items, err := stringList(req, "items")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	if _, err := s.votings.Submit(ctx, voting, voter, items); err != nil {
		return nil, s.handleError(ctx, "SubmitBallot", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCHandlers) GetRanking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	voting, err := stringField(req, "voting")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	entries, err := s.votings.Ranking(ctx, voting)
	if err != nil {
		return nil, s.handleError(ctx, "GetRanking", err)
	}

	resp, err := rankingToStruct(entries)
	if err != nil {
		return nil, s.handleError(ctx, "GetRanking", err)
	}
	return resp, nil
}

func (s *GRPCHandlers) ExportRanking(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	voting, err := stringField(req, "voting")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	entries, err := s.votings.Ranking(ctx, voting)
	if err != nil {
		return nil, s.handleError(ctx, "ExportRanking", err)
	}

	var buf bytes.Buffer
	if err := export.WriteRanking(&buf, entries); err != nil {
		return nil, s.handleError(ctx, "ExportRanking", err)
	}
	return wrapperspb.Bytes(buf.Bytes()), nil
}
