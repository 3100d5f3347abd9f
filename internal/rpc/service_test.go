package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"dinotidus/internal/agent"
	"dinotidus/internal/config"
	"dinotidus/pkg/neural"
	"dinotidus/pkg/nlp"
)

func newTestClient(t *testing.T) (*Client, *agent.Registry) {
	t.Helper()
	cfg := config.Default()
	reg := agent.NewRegistry(cfg.Model, cfg.Agent, nil)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewService(reg, nil).Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Error("gRPC server did not stop")
		}
	})
	return NewClient(conn), reg
}

func TestChat(t *testing.T) {
	c, reg := newTestClient(t)
	ctx := context.Background()

	res, err := c.Chat(ctx, "", "привет, как дела?")
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionID)
	assert.True(t, reg.Exists(res.SessionID))
	assert.Equal(t, nlp.MessageGreeting, res.Reply.MessageType)
	assert.Equal(t, nlp.ToneNeutral, res.Reply.Tone)
	assert.Equal(t, []string{"привет", "дела"}, res.Reply.Keywords)
	assert.Len(t, res.Reply.FollowUps, 3)
	assert.InDelta(t, 2.07, res.Reply.Size, 1e-9)

	again, err := c.Chat(ctx, res.SessionID, "расскажи про нейросеть и технологии")
	require.NoError(t, err)
	assert.Equal(t, res.SessionID, again.SessionID)
	assert.Equal(t, nlp.TopicTechnology, again.Reply.Topic)

	stats, err := c.Stats(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Turns)
	assert.Equal(t, 2, stats.Examples)
}

func TestTrain(t *testing.T) {
	c, reg := newTestClient(t)
	ctx := context.Background()
	id, err := reg.Create()
	require.NoError(t, err)

	stats, err := c.Train(ctx, id, "кто ты", "я нейросеть")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Examples)
	assert.Equal(t, 5, stats.Vocabulary)

	stats, err = c.TrainBatch(ctx, id, []neural.Pair{{Question: "привет", Answer: "Привет! Как дела?"}})
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Vocabulary)
	assert.Equal(t, 2, stats.Examples)
}

func TestErrorCodes(t *testing.T) {
	c, reg := newTestClient(t)
	ctx := context.Background()

	_, err := c.Stats(ctx, "missing")
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.Stats(ctx, "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	id, err := reg.Create()
	require.NoError(t, err)
	_, err = c.Train(ctx, id, "", "ответ")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.TrainBatch(ctx, id, nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.TrainBatch(ctx, id, []neural.Pair{{Question: "a", Answer: " "}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	out := new(structpb.Struct)
	in, err := structpb.NewStruct(map[string]any{"session_id": id})
	require.NoError(t, err)
	err = c.cc.Invoke(ctx, ChatMethod, in, out)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestToStatus(t *testing.T) {
	assert.Equal(t, codes.NotFound, status.Code(toStatus(agent.ErrSessionNotFound)))
	assert.Equal(t, codes.InvalidArgument, status.Code(toStatus(neural.ErrDeserialization)))
	assert.Equal(t, codes.DeadlineExceeded, status.Code(toStatus(context.DeadlineExceeded)))
	assert.Equal(t, codes.Canceled, status.Code(toStatus(context.Canceled)))
	assert.Equal(t, codes.Internal, status.Code(toStatus(assert.AnError)))
}
