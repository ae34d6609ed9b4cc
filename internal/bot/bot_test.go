package bot

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ledgerbot/internal/cache"
	"ledgerbot/internal/command"
	"ledgerbot/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingHandler struct {
	calls atomic.Int32
	inner Handler
}

func (h *countingHandler) Handle(ctx context.Context, text, userID string) string {
	h.calls.Add(1)
	return h.inner.Handle(ctx, text, userID)
}

func newTestBot() (*Bot, *countingHandler) {
	h := &countingHandler{inner: command.NewDispatcher(ledger.NewRegistry(), nil, nil)}
	return New(h, cache.NewLRUCache[Reply](100, time.Minute), nil), h
}

func TestHandleAttachesKeyboard(t *testing.T) {
	b, _ := newTestBot()

	reply, err := b.Handle(context.Background(), Message{UserID: "u1", Text: "/balance"})
	require.NoError(t, err)
	assert.Equal(t, "Balance: 0.00", reply.Text)
	assert.Len(t, reply.Keyboard.Rows, 5)
}

func TestHandleRequiresUser(t *testing.T) {
	b, _ := newTestBot()
	_, err := b.Handle(context.Background(), Message{UserID: "  ", Text: "/help"})
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestRedeliveredMessageRunsOnce(t *testing.T) {
	b, h := newTestBot()
	ctx := context.Background()
	msg := Message{ID: "m-1", UserID: "u1", Text: "/add_in 100 Salary work"}

	first, err := b.Handle(ctx, msg)
	require.NoError(t, err)
	second, err := b.Handle(ctx, msg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, h.calls.Load())

	reply, _ := b.Handle(ctx, Message{UserID: "u1", Text: "/count_ops"})
	assert.Contains(t, reply.Text, "Incomes: 1")
}

func TestMessageIDsAreScopedPerUser(t *testing.T) {
	b, h := newTestBot()
	ctx := context.Background()

	_, _ = b.Handle(ctx, Message{ID: "1", UserID: "alice", Text: "/add_ex 5 Tea food"})
	_, _ = b.Handle(ctx, Message{ID: "1", UserID: "bob", Text: "/add_ex 5 Tea food"})
	assert.EqualValues(t, 2, h.calls.Load())
}

func TestConcurrentDuplicatesRunOnce(t *testing.T) {
	b, h := newTestBot()
	ctx := context.Background()
	msg := Message{ID: "dup", UserID: "u1", Text: "/add_ex 7 Bus transport"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = b.Handle(ctx, msg)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, h.calls.Load())
}

func TestReplayed(t *testing.T) {
	b, _ := newTestBot()
	ctx := context.Background()

	assert.False(t, b.Replayed("u1", "m1"))
	_, err := b.Handle(ctx, Message{ID: "m1", UserID: "u1", Text: "/balance"})
	require.NoError(t, err)

	assert.True(t, b.Replayed(" u1 ", "m1"))
	assert.False(t, b.Replayed("u2", "m1"))
	assert.False(t, b.Replayed("u1", ""))

	noCache := New(command.NewDispatcher(ledger.NewRegistry(), nil, nil), nil, nil)
	_, err = noCache.Handle(ctx, Message{ID: "m1", UserID: "u1", Text: "/balance"})
	require.NoError(t, err)
	assert.False(t, noCache.Replayed("u1", "m1"))
}
