package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/happyculture/soco-concierge/pkg/llm"
	"github.com/happyculture/soco-concierge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyClient struct {
	calls int
	err   error
}

func (f *flakyClient) Chat(ctx context.Context, messages []llm.Message) (*llm.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: "ok"}, nil
}

func (f *flakyClient) Close() error { return nil }

func TestBreakerPassesThroughSuccess(t *testing.T) {
	inner := &flakyClient{}
	client := llm.NewBreakerClient(inner, 3, time.Minute)

	resp, err := client.Chat(context.Background(), []llm.Message{llm.NewUserMessage("bonjour")})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 1, inner.calls)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyClient{err: errors.New("upstream down")}
	client := llm.NewBreakerClient(inner, 3, time.Minute)

	ctx := context.Background()
	messages := []llm.Message{llm.NewUserMessage("bonjour")}

	for i := 0; i < 3; i++ {
		_, err := client.Chat(ctx, messages)
		require.Error(t, err)
	}

	// Breaker is now open: the inner client is no longer called and the
	// error classifies as a model failure.
	_, err := client.Chat(ctx, messages)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrModel))
	assert.Equal(t, 3, inner.calls)
}
