package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pallab-BJIT/mid-term-project/pkg/db/dbtest"
)

type ctxKey struct{}

func TestBaseDBBindsContext(t *testing.T) {
	conn := dbtest.Open(t)
	base := NewBase(conn)

	ctx := context.WithValue(context.Background(), ctxKey{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx.Statement)
	require.Equal(t, ctx, withCtx.Statement.Context)

	require.Same(t, conn, base.DB(nil))
}

func TestBaseBindSwapsHandle(t *testing.T) {
	conn := dbtest.Open(t)
	base := NewBase(conn)

	require.Same(t, conn, base.Bind(nil).DB(nil))

	tx := conn.Begin()
	t.Cleanup(func() { tx.Rollback() })
	require.Same(t, tx, base.Bind(tx).DB(nil))
	require.Same(t, conn, base.DB(nil))
}
