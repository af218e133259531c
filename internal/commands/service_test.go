package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/avekrivov/warden-bot/internal/errors"
	"github.com/avekrivov/warden-bot/internal/store"
)

type fakeRegistrar struct {
	created   []string
	deleted   []string
	createErr error
	nextID    string
}

func (f *fakeRegistrar) CreateCommand(_ context.Context, name, _ string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, name)
	return f.nextID, nil
}

func (f *fakeRegistrar) DeleteCommand(_ context.Context, commandID string) error {
	f.deleted = append(f.deleted, commandID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_CreateAndLookup(t *testing.T) {
	reg := &fakeRegistrar{nextID: "cmd-1"}
	svc := NewService(store.NewMemoryStore(), reg, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, "  Greet ", "hello there"))

	response, err := svc.Lookup(ctx, "greet")
	require.NoError(t, err)
	assert.Equal(t, "hello there", response)

	// lookup is case-insensitive on the caller side too
	response, err = svc.Lookup(ctx, "GREET")
	require.NoError(t, err)
	assert.Equal(t, "hello there", response)

	assert.Equal(t, []string{"greet"}, reg.created)
}

func TestService_CreateOverwritesSilently(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), &fakeRegistrar{nextID: "cmd-1"}, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, "greet", "first"))
	require.NoError(t, svc.Create(ctx, "greet", "second"))

	response, err := svc.Lookup(ctx, "greet")
	require.NoError(t, err)
	assert.Equal(t, "second", response)
}

func TestService_CreateSurvivesRegistrarFailure(t *testing.T) {
	reg := &fakeRegistrar{createErr: errors.New("api down")}
	svc := NewService(store.NewMemoryStore(), reg, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, "greet", "hello"))

	response, err := svc.Lookup(ctx, "greet")
	require.NoError(t, err)
	assert.Equal(t, "hello", response)
}

func TestService_CreateRejectsEmptyName(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), nil, testLogger())
	assert.Error(t, svc.Create(context.Background(), "   ", "hello"))
}

func TestService_DeleteRemovesAndUnregisters(t *testing.T) {
	reg := &fakeRegistrar{nextID: "cmd-9"}
	svc := NewService(store.NewMemoryStore(), reg, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, "greet", "hello"))
	require.NoError(t, svc.Delete(ctx, "greet"))

	_, err := svc.Lookup(ctx, "greet")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E404", appErr.Code)

	assert.Equal(t, []string{"cmd-9"}, reg.deleted)
}

func TestService_DeleteMissingReturnsNotFound(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), nil, testLogger())

	err := svc.Delete(context.Background(), "nope")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E404", appErr.Code)
}

func TestService_ListSorted(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), nil, testLogger())
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, svc.Create(ctx, name, "x"))
	}

	names, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestService_ListEmpty(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), nil, testLogger())

	names, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}
