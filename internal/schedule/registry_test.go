package schedule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avekrivov/warden-bot/internal/domain"
	apperrors "github.com/avekrivov/warden-bot/internal/errors"
	"github.com/avekrivov/warden-bot/internal/store"
)

// fakeScheduler validates expressions by shape only and tracks which
// handles are live.
type fakeScheduler struct {
	nextHandle int
	active     map[string]domain.ScheduledMessage
	registered int
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{active: make(map[string]domain.ScheduledMessage)}
}

func (f *fakeScheduler) Schedule(cronExpr string, msg domain.ScheduledMessage) (string, error) {
	if len(strings.Fields(cronExpr)) != 5 {
		return "", errors.New("expected 5 fields")
	}

	f.nextHandle++
	f.registered++
	handle := fmt.Sprintf("entry-%d", f.nextHandle)
	f.active[handle] = msg

	return handle, nil
}

func (f *fakeScheduler) Cancel(handle string) error {
	if _, ok := f.active[handle]; !ok {
		return errors.New("unknown handle")
	}
	delete(f.active, handle)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistry_CreateRegistersAndPersists(t *testing.T) {
	sched := newFakeScheduler()
	st := store.NewMemoryStore()
	reg := NewRegistry(st, sched, testLogger())
	ctx := context.Background()

	id, err := reg.Create(ctx, "g1", "chan-1", "daily standup", "0 12 * * *")
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Len(t, sched.active, 1)

	records, err := reg.List(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, "daily standup", records[0].Message)
	assert.Equal(t, "0 12 * * *", records[0].CronExpr)
}

func TestRegistry_CreateInvalidExpressionPersistsNothing(t *testing.T) {
	sched := newFakeScheduler()
	reg := NewRegistry(store.NewMemoryStore(), sched, testLogger())
	ctx := context.Background()

	_, err := reg.Create(ctx, "g1", "chan-1", "msg", "not a cron")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E422", appErr.Code)

	records, listErr := reg.List(ctx, "g1")
	require.NoError(t, listErr)
	assert.Empty(t, records)
	assert.Empty(t, sched.active)
}

func TestRegistry_DeleteCancelsLiveRegistration(t *testing.T) {
	sched := newFakeScheduler()
	reg := NewRegistry(store.NewMemoryStore(), sched, testLogger())
	ctx := context.Background()

	id, err := reg.Create(ctx, "g1", "chan-1", "msg", "*/5 * * * *")
	require.NoError(t, err)

	require.NoError(t, reg.Delete(ctx, id, "g1"))

	assert.Empty(t, sched.active, "live registration must be cancelled, not just the row removed")

	records, err := reg.List(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRegistry_DeleteWrongGuildIsNotFound(t *testing.T) {
	sched := newFakeScheduler()
	reg := NewRegistry(store.NewMemoryStore(), sched, testLogger())
	ctx := context.Background()

	id, err := reg.Create(ctx, "g1", "chan-1", "msg", "*/5 * * * *")
	require.NoError(t, err)

	err = reg.Delete(ctx, id, "g2")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E404", appErr.Code)

	// record and registration survive
	assert.Len(t, sched.active, 1)
	records, err := reg.List(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRegistry_ListFiltersByGuild(t *testing.T) {
	sched := newFakeScheduler()
	reg := NewRegistry(store.NewMemoryStore(), sched, testLogger())
	ctx := context.Background()

	_, err := reg.Create(ctx, "g1", "chan-1", "a", "0 9 * * *")
	require.NoError(t, err)
	_, err = reg.Create(ctx, "g2", "chan-2", "b", "0 10 * * *")
	require.NoError(t, err)
	_, err = reg.Create(ctx, "g1", "chan-3", "c", "0 11 * * *")
	require.NoError(t, err)

	records, err := reg.List(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Message)
	assert.Equal(t, "c", records[1].Message)
	assert.Less(t, records[0].ID, records[1].ID)
}

func TestRegistry_RestoreRegistersEachRecordOnce(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	// seed two persisted records through a first registry "process"
	first := NewRegistry(st, newFakeScheduler(), testLogger())
	_, err := first.Create(ctx, "g1", "chan-1", "a", "0 9 * * *")
	require.NoError(t, err)
	_, err = first.Create(ctx, "g1", "chan-2", "b", "0 10 * * *")
	require.NoError(t, err)

	// simulated restart: fresh scheduler, fresh registry, same store
	sched := newFakeScheduler()
	restarted := NewRegistry(st, sched, testLogger())
	require.NoError(t, restarted.Restore(ctx))

	assert.Equal(t, 2, sched.registered)
	assert.Len(t, sched.active, 2)
}

func TestRegistry_RestoreSkipsUnparseableRecords(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	doc := `{"items":[
		{"id":1,"guildId":"g1","channelId":"c1","message":"ok","cron":"0 9 * * *"},
		{"id":2,"guildId":"g1","channelId":"c2","message":"bad","cron":"garbage"}
	]}`
	require.NoError(t, st.Save(ctx, store.KeyScheduledMessages, []byte(doc)))

	sched := newFakeScheduler()
	reg := NewRegistry(st, sched, testLogger())
	require.NoError(t, reg.Restore(ctx))

	assert.Len(t, sched.active, 1)
}

func TestRegistry_DeleteAfterRestoreCancelsRegistration(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	first := NewRegistry(st, newFakeScheduler(), testLogger())
	id, err := first.Create(ctx, "g1", "chan-1", "a", "0 9 * * *")
	require.NoError(t, err)

	sched := newFakeScheduler()
	restarted := NewRegistry(st, sched, testLogger())
	require.NoError(t, restarted.Restore(ctx))

	require.NoError(t, restarted.Delete(ctx, id, "g1"))
	assert.Empty(t, sched.active)
}
