package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_AppendPreservesOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		err := s.Append(ctx, &Finding{
			RunID:   "run-1",
			AgentID: i,
			Topic:   fmt.Sprintf("topic %d", i),
		})
		require.NoError(t, err)
	}

	records := s.Records()
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, i+1, rec.AgentID)
		assert.NotEmpty(t, rec.ID)
		assert.False(t, rec.CreatedAt.IsZero())
	}
}

func TestMemoryStore_AppendNilRecord(t *testing.T) {
	s := NewMemoryStore()
	err := s.Append(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMemoryStore_RecordsReturnsSnapshot(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Append(context.Background(), &Finding{Topic: "original"}))

	records := s.Records()
	require.Len(t, records, 1)

	// 快照里的指针与内部存储隔离于后续 Append。
	require.NoError(t, s.Append(context.Background(), &Finding{Topic: "second"}))
	assert.Len(t, records, 1)
}

func TestMemoryStore_AppendCopiesInput(t *testing.T) {
	s := NewMemoryStore()
	f := &Finding{Topic: "before"}
	require.NoError(t, s.Append(context.Background(), f))

	f.Topic = "after"

	assert.Equal(t, "before", s.Records()[0].Topic)
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Append(context.Background(), &Finding{}), ErrStoreClosed)
	assert.ErrorIs(t, s.Ping(context.Background()), ErrStoreClosed)
}
