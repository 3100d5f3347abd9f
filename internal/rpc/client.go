package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"dinotidus/internal/agent"
	"dinotidus/pkg/neural"
	"dinotidus/pkg/nlp"
)

// Client calls the chat service over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// ChatResult is a reply together with the session that produced it.
type ChatResult struct {
	SessionID string
	Reply     agent.Reply
}

func (c *Client) invoke(ctx context.Context, method string, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Chat sends a message. An empty sessionID opens a new session.
func (c *Client) Chat(ctx context.Context, sessionID, message string, opts ...grpc.CallOption) (*ChatResult, error) {
	in := map[string]any{"message": message}
	if sessionID != "" {
		in["session_id"] = sessionID
	}
	out, err := c.invoke(ctx, ChatMethod, in, opts...)
	if err != nil {
		return nil, err
	}

	f := out.GetFields()
	return &ChatResult{
		SessionID: f["session_id"].GetStringValue(),
		Reply: agent.Reply{
			Text:        f["text"].GetStringValue(),
			MessageType: nlp.MessageType(f["message_type"].GetStringValue()),
			Topic:       nlp.Topic(f["topic"].GetStringValue()),
			Tone:        nlp.Tone(f["tone"].GetStringValue()),
			Keywords:    stringValues(f["keywords"]),
			FollowUps:   stringValues(f["follow_ups"]),
			Size:        f["size"].GetNumberValue(),
			Quality:     f["quality"].GetNumberValue(),
		},
	}, nil
}

// Train sends one pair.
func (c *Client) Train(ctx context.Context, sessionID, question, answer string, opts ...grpc.CallOption) (agent.Stats, error) {
	out, err := c.invoke(ctx, TrainMethod, map[string]any{
		"session_id": sessionID,
		"question":   question,
		"answer":     answer,
	}, opts...)
	if err != nil {
		return agent.Stats{}, err
	}
	return statsFromStruct(out), nil
}

// TrainBatch sends a corpus.
func (c *Client) TrainBatch(ctx context.Context, sessionID string, pairs []neural.Pair, opts ...grpc.CallOption) (agent.Stats, error) {
	list := make([]any, len(pairs))
	for i, p := range pairs {
		list[i] = map[string]any{"question": p.Question, "answer": p.Answer}
	}
	out, err := c.invoke(ctx, TrainMethod, map[string]any{
		"session_id": sessionID,
		"pairs":      list,
	}, opts...)
	if err != nil {
		return agent.Stats{}, err
	}
	return statsFromStruct(out), nil
}

// Stats returns the session gauges.
func (c *Client) Stats(ctx context.Context, sessionID string, opts ...grpc.CallOption) (agent.Stats, error) {
	out, err := c.invoke(ctx, StatsMethod, map[string]any{"session_id": sessionID}, opts...)
	if err != nil {
		return agent.Stats{}, err
	}
	return statsFromStruct(out), nil
}

func statsFromStruct(s *structpb.Struct) agent.Stats {
	f := s.GetFields()
	return agent.Stats{
		Size:       f["size"].GetNumberValue(),
		Quality:    f["quality"].GetNumberValue(),
		Vocabulary: int(f["vocabulary"].GetNumberValue()),
		Turns:      int(f["turns"].GetNumberValue()),
		Examples:   int(f["examples"].GetNumberValue()),
	}
}

func stringValues(v *structpb.Value) []string {
	values := v.GetListValue().GetValues()
	out := make([]string, len(values))
	for i, item := range values {
		out[i] = item.GetStringValue()
	}
	return out
}
