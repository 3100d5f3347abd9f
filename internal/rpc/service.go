// Package rpc exposes chat sessions as a gRPC service. Messages are
// google.protobuf.Struct values, so no generated code is required.
package rpc

import (
	"context"
	"errors"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"dinotidus/internal/agent"
	"dinotidus/internal/logging"
	"dinotidus/pkg/neural"
)

const ServiceName = "dinotidus.v1.ChatService"

const (
	ChatMethod  = "/" + ServiceName + "/Chat"
	TrainMethod = "/" + ServiceName + "/Train"
	StatsMethod = "/" + ServiceName + "/Stats"
)

// ChatServer is the server side of the chat service.
type ChatServer interface {
	Chat(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Train(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Stats(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(ChatServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ChatServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ChatServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes the chat service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChatServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Chat", Handler: unaryHandler(ChatMethod, ChatServer.Chat)},
		{MethodName: "Train", Handler: unaryHandler(TrainMethod, ChatServer.Train)},
		{MethodName: "Stats", Handler: unaryHandler(StatsMethod, ChatServer.Stats)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dinotidus/v1/chat.proto",
}

// Service implements ChatServer on top of a session registry.
type Service struct {
	registry *agent.Registry
	log      *logging.Logger
}

func NewService(registry *agent.Registry, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{registry: registry, log: log}
}

// NewServer returns a grpc.Server with the service registered.
func (s *Service) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.logInterceptor))
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&ServiceDesc, s)
	return srv
}

// Serve runs the gRPC server on lis until ctx ends.
func (s *Service) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()
	go func() {
		<-ctx.Done()
		s.log.Info("Shutting down gRPC server...")
		srv.GracefulStop()
	}()
	s.log.Info("gRPC server listening on %s", lis.Addr())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *Service) logInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		s.log.Warn("%s failed: %v", info.FullMethod, err)
	} else {
		s.log.Debug("%s ok", info.FullMethod)
	}
	return resp, err
}

// Chat runs one turn. Fields: session_id (optional), message.
func (s *Service) Chat(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	message, ok := stringField(in, "message")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "message is required")
	}

	id, _ := stringField(in, "session_id")
	if id == "" {
		var err error
		if id, err = s.registry.Create(); err != nil {
			return nil, toStatus(err)
		}
	}

	var reply agent.Reply
	err := s.registry.Do(ctx, id, func(a *agent.Agent) error {
		reply = a.Respond(message)
		return nil
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return replyToStruct(id, reply)
}

// Train applies either one pair (question, answer) or a batch (pairs).
func (s *Service) Train(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, ok := stringField(in, "session_id")
	if !ok || id == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}

	pairs, err := pairsField(in)
	if err != nil {
		return nil, err
	}

	var stats agent.Stats
	err = s.registry.Do(ctx, id, func(a *agent.Agent) error {
		if len(pairs) == 1 && in.GetFields()["pairs"] == nil {
			a.Train(pairs[0].Question, pairs[0].Answer)
		} else {
			a.TrainBatch(pairs, nil)
		}
		stats = a.Stats()
		return nil
	})
	if err != nil {
		return nil, toStatus(err)
	}
	out := statsMap(id, stats)
	out["trained"] = len(pairs)
	return structpb.NewStruct(out)
}

// Stats returns the session gauges.
func (s *Service) Stats(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, ok := stringField(in, "session_id")
	if !ok || id == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}

	var stats agent.Stats
	err := s.registry.Do(ctx, id, func(a *agent.Agent) error {
		stats = a.Stats()
		return nil
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(statsMap(id, stats))
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, agent.ErrSessionNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, neural.ErrDeserialization):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Internal, err.Error())
}

func stringField(in *structpb.Struct, name string) (string, bool) {
	v, ok := in.GetFields()[name]
	if !ok {
		return "", false
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", false
	}
	return s.StringValue, true
}

func pairsField(in *structpb.Struct) ([]neural.Pair, error) {
	if list := in.GetFields()["pairs"].GetListValue(); list != nil {
		pairs := make([]neural.Pair, 0, len(list.GetValues()))
		for i, v := range list.GetValues() {
			fields := v.GetStructValue().GetFields()
			q := fields["question"].GetStringValue()
			a := fields["answer"].GetStringValue()
			if strings.TrimSpace(q) == "" || strings.TrimSpace(a) == "" {
				return nil, status.Errorf(codes.InvalidArgument, "pair %d: question and answer are required", i+1)
			}
			pairs = append(pairs, neural.Pair{Question: q, Answer: a})
		}
		if len(pairs) == 0 {
			return nil, status.Error(codes.InvalidArgument, "empty batch")
		}
		return pairs, nil
	}

	q, _ := stringField(in, "question")
	a, _ := stringField(in, "answer")
	if q == "" || a == "" {
		return nil, status.Error(codes.InvalidArgument, "question and answer are required")
	}
	return []neural.Pair{{Question: q, Answer: a}}, nil
}

func statsMap(id string, st agent.Stats) map[string]any {
	return map[string]any{
		"session_id": id,
		"size":       st.Size,
		"quality":    st.Quality,
		"vocabulary": st.Vocabulary,
		"turns":      st.Turns,
		"examples":   st.Examples,
	}
}

func replyToStruct(id string, r agent.Reply) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"session_id":   id,
		"text":         r.Text,
		"message_type": string(r.MessageType),
		"topic":        string(r.Topic),
		"tone":         string(r.Tone),
		"keywords":     stringList(r.Keywords),
		"follow_ups":   stringList(r.FollowUps),
		"size":         r.Size,
		"quality":      r.Quality,
	})
}

func stringList(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
