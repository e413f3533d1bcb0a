package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogListings(t *testing.T) {
	st := newFakeStore()
	st.addBranch("b2", 4)
	st.addBranch("b1", 8)
	st.items["rum"] = intp(5)
	svc := NewCatalogService(st)
	ctx := context.Background()

	branches, err := svc.ListBranches(ctx)
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, "b1", branches[0].ID)

	items, err := svc.ListItemsByType(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, *items[0].Concentration)

	_, err = svc.ListItemsByType(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
}
