package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

func newRepo(t *testing.T) *AnalysisRepository {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := NewAnalysisRepository(db)
	require.NoError(t, r.EnsureSchema(ctx))
	return r
}

func TestSaveAndGet(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 12, 0, 0, 123, time.UTC)
	in := domain.Input{BrandName: "Acme", OfficialURLs: "https://acme.example", ExtraNotes: "hiring"}

	require.NoError(t, r.Save(ctx, &domain.Record{
		ID: "analysis_1", Input: in, Result: "## Report", CreatedAt: created,
		OwnerID: "alice", OwnerEmail: "alice@example.com",
	}))

	got, err := r.GetByID(ctx, "analysis_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in, got.Input)
	assert.Equal(t, "## Report", got.Result)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, "alice@example.com", got.OwnerEmail)

	missing, err := r.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListByOwner(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		owner := "alice"
		if i == 2 {
			owner = "bob"
		}
		require.NoError(t, r.Save(ctx, &domain.Record{
			ID: fmt.Sprintf("a%d", i), Input: domain.Input{BrandName: "Acme"}, Result: "r",
			CreatedAt: base.Add(time.Duration(i) * time.Hour), OwnerID: owner,
		}))
	}

	list, err := r.ListByOwner(ctx, "alice", 3, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "a4", list[0].ID)
	assert.Equal(t, "a3", list[1].ID)
	assert.Equal(t, "a1", list[2].ID)
	for _, a := range list {
		assert.Equal(t, "alice", a.OwnerID)
	}

	list, err = r.ListByOwner(ctx, "bob", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a2", list[0].ID)

	list, err = r.ListByOwner(ctx, "alice", 2, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a1", list[0].ID)
	assert.Equal(t, "a0", list[1].ID)

	list, err = r.ListByOwner(ctx, "alice", 2, 4)
	require.NoError(t, err)
	assert.Empty(t, list)
}
