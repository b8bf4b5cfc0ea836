package store

import (
	"context"
	"testing"

	"lichess-bot/internal/testutil"
)

func openStore(t *testing.T) (*Store, context.Context, func()) {
	t.Helper()
	dsn, dropSchema := testutil.OpenTestSchema(t)
	ctx := context.Background()
	st, err := New(ctx, dsn)
	if err != nil {
		dropSchema()
		t.Fatalf("open store: %v", err)
	}
	return st, ctx, func() {
		st.Close()
		dropSchema()
	}
}
