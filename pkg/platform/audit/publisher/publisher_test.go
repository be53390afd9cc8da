package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "printsettings/pkg/platform/audit"
	"printsettings/pkg/platform/audit/store/memory"
	"printsettings/pkg/requestcontext"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	userID := uuid.NewString()
	err := pub.Emit(context.Background(), audit.Event{
		UserID: userID,
		Action: string(audit.EventUserCreated),
	})
	require.NoError(t, err)

	events, err := store.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventUserCreated), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	userID := uuid.NewString()
	err := pub.Emit(context.Background(), audit.Event{
		UserID: userID,
		Action: string(audit.EventLoginSucceeded),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		events, err := store.ListByUser(context.Background(), userID)
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	userID := uuid.NewString()
	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			UserID: userID,
			Action: string(audit.EventUserCreated),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	pub.Close()
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventUserCreated)})
	require.ErrorIs(t, err, ErrClosed)
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{
				UserID: "u1",
				Action: string(audit.EventUserCreated),
			})
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
	pub.Close()

	events, err := store.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, events)
	assert.LessOrEqual(t, len(events), 10)
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithClock(func() time.Time { return fixed }))

	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		UserID: "u1",
		Action: string(audit.EventUserCreated),
	}))

	events, err := store.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		UserID:    "u1",
		Action:    string(audit.EventUserCreated),
		Timestamp: customTime,
	}))

	events, err := store.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_EnrichesFromRequestContext(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	ctx := requestcontext.WithRequestID(context.Background(), "req-42")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.7",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	require.NoError(t, pub.Emit(ctx, audit.Event{UserID: "u1", Action: string(audit.EventAuthFailed)}))

	events, err := store.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "req-42", events[0].RequestID)
	assert.Equal(t, "203.0.113.7", events[0].IP)
	assert.Contains(t, events[0].Device, "Chrome")
	assert.Equal(t, audit.CategorySecurity, events[0].Category)
}
