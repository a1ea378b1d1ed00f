package checkout

import (
	"path/filepath"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosewear/storefront/internal/domain/order"
)

func TestJournal_RecordAndLoad(t *testing.T) {
	j := NewJournal(filepath.Join(t.TempDir(), "journal.json"))

	res := &Result{
		Order:   &order.Order{ID: "o1", Reference: "ref-1"},
		Retired: []string{"2"},
		Failed: []RetirementFailure{
			{LineID: "1", Err: errors.New("delete failed")},
		},
	}
	require.NoError(t, j.Record(res))

	pending, err := j.Load()
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "o1", pending.OrderID)
	assert.Equal(t, "ref-1", pending.Reference)
	assert.Equal(t, []string{"1"}, pending.Leftover)
	assert.False(t, pending.RecordedAt.IsZero())
}

func TestJournal_CleanResultClears(t *testing.T) {
	j := NewJournal(filepath.Join(t.TempDir(), "journal.json"))

	dirty := &Result{
		Order:  &order.Order{ID: "o1", Reference: "ref-1"},
		Failed: []RetirementFailure{{LineID: "1", Err: errors.New("boom")}},
	}
	require.NoError(t, j.Record(dirty))

	clean := &Result{
		Order:   &order.Order{ID: "o2", Reference: "ref-2"},
		Retired: []string{"5"},
	}
	require.NoError(t, j.Record(clean))

	pending, err := j.Load()
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestJournal_LoadMissingFile(t *testing.T) {
	j := NewJournal(filepath.Join(t.TempDir(), "journal.json"))

	pending, err := j.Load()
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestJournal_ClearIsIdempotent(t *testing.T) {
	j := NewJournal(filepath.Join(t.TempDir(), "journal.json"))

	require.NoError(t, j.Clear())
	require.NoError(t, j.Clear())
}
