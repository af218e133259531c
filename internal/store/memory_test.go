package store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_LoadMissingKey(t *testing.T) {
	s := NewMemoryStore()

	doc, err := s.Load(context.Background(), KeyLevels)
	assert.NoError(t, err)
	assert.JSONEq(t, `{}`, string(doc))
}

func TestMemoryStore_SaveThenLoad(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.Save(ctx, KeyGuildConfig, json.RawMessage(`{"antiLink":true}`))
	assert.NoError(t, err)

	doc, err := s.Load(ctx, KeyGuildConfig)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"antiLink":true}`, string(doc))
}

func TestMemoryStore_CorruptDocReadsAsEmpty(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.Save(ctx, KeyLevels, json.RawMessage(`{"broken`)))

	doc, err := s.Load(ctx, KeyLevels)
	assert.NoError(t, err)
	assert.JSONEq(t, `{}`, string(doc))
}

func TestMemoryStore_UpdateIsAtomic(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)

	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()

			err := s.Update(ctx, KeyLevels, func(raw json.RawMessage) (json.RawMessage, error) {
				var doc map[string]int
				if err := json.Unmarshal(raw, &doc); err != nil {
					return nil, err
				}
				doc["counter"]++
				return json.Marshal(doc)
			})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	raw, err := s.Load(ctx, KeyLevels)
	assert.NoError(t, err)

	var doc map[string]int
	assert.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, writers, doc["counter"])
}

func TestMemoryStore_UpdateErrorDiscardsWrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.Save(ctx, KeyCustomCommands, json.RawMessage(`{"hi":{"response":"hello"}}`)))

	err := s.Update(ctx, KeyCustomCommands, func(json.RawMessage) (json.RawMessage, error) {
		return nil, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	doc, err := s.Load(ctx, KeyCustomCommands)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"hi":{"response":"hello"}}`, string(doc))
}
