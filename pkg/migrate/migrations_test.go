package migrate

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestEmbeddedMigrationsAreComplete(t *testing.T) {
	entries, err := fs.ReadDir(Embedded(), EmbeddedDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var all strings.Builder
	for _, e := range entries {
		data, err := fs.ReadFile(Embedded(), EmbeddedDir+"/"+e.Name())
		require.NoError(t, err)
		all.Write(data)
	}
	content := all.String()

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CREATE TABLE IF NOT EXISTS books",
		"CONSTRAINT books_stock_check CHECK (stock >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_discount_campaign_books_book ON discount_campaign_books (book_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_cart_items_cart_book",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_reviews_bucket_user",
		"CREATE TABLE IF NOT EXISTS transaction_items",
		"CREATE TABLE IF NOT EXISTS outbox_events",
		"CONSTRAINT users_balance_check CHECK (balance >= 0)",
	} {
		assert.Contains(t, content, want)
	}
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Book Language")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_book_language.sql"))
	require.NoError(t, ValidateDir(dir))
}

func TestValidateFSAcceptsEmbeddedMigrations(t *testing.T) {
	require.NoError(t, ValidateFS(Embedded(), EmbeddedDir))
}

func TestCreateSQLMigrationAvoidsVersionClash(t *testing.T) {
	dir := t.TempDir()
	first, err := CreateSQLMigration(dir, "add index")
	require.NoError(t, err)
	second, err := CreateSQLMigration(dir, "add index")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	require.NoError(t, ValidateDir(dir))
}

func TestCreateSQLMigrationRejectsEmptySlug(t *testing.T) {
	_, err := CreateSQLMigration(t.TempDir(), "  !!  ")
	require.Error(t, err)
}
