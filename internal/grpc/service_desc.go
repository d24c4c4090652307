package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name, also used for its
// health status.
const ServiceName = "votingtool.v1.VotingTool"

// VotingToolServer is the server API of the VotingTool service. Requests and
// responses are protobuf well-known types, so clients need no generated code.
type VotingToolServer interface {
	ListVotings(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	CreateVoting(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearVoting(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	DeleteVoting(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	SubmitBallot(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	GetRanking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportRanking(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
}

// unary builds the method descriptor for one RPC, decoding into a fresh Req
// and running the server's interceptor chain.
func unary[Req any, Resp any](method string, call func(VotingToolServer, context.Context, *Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(VotingToolServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(VotingToolServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var votingToolServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VotingToolServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListVotings", VotingToolServer.ListVotings),
		unary("CreateVoting", VotingToolServer.CreateVoting),
		unary("ClearVoting", VotingToolServer.ClearVoting),
		unary("DeleteVoting", VotingToolServer.DeleteVoting),
		unary("SubmitBallot", VotingToolServer.SubmitBallot),
		unary("GetRanking", VotingToolServer.GetRanking),
		unary("ExportRanking", VotingToolServer.ExportRanking),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "votingtool/v1/voting_tool.proto",
}

// RegisterVotingToolServer registers srv on s.
func RegisterVotingToolServer(s grpc.ServiceRegistrar, srv VotingToolServer) {
	s.RegisterService(&votingToolServiceDesc, srv)
}
