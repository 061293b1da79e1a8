package migration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/d-banana/safe-portfolio-management/pkg/logger"
	"github.com/d-banana/safe-portfolio-management/pkg/questdb/mock"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func writeMigrations(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"20250101000000_ticks.up.sql":   "CREATE TABLE a;",
		"20250101000000_ticks.down.sql": "DROP TABLE a;",
		"20250102000000_hloc.up.sql":    "CREATE TABLE b;\n",
		"20250102000000_hloc.down.sql":  "DROP TABLE b;",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.rolledBack = true
	return nil
}

func expectApplied(client *mock.MockClient, rows *mock.MockRowsInterface, ids ...string) {
	client.EXPECT().Query(gomock.Any(), "SELECT id FROM schema_migrations ORDER BY applied_at").Return(rows, nil)
	for _, id := range ids {
		rows.EXPECT().Next().Return(true)
		rows.EXPECT().Scan(gomock.Any()).DoAndReturn(func(dest ...any) error {
			*dest[0].(*string) = id
			return nil
		})
	}
	rows.EXPECT().Next().Return(false)
	rows.EXPECT().Err().Return(nil)
	rows.EXPECT().Close()
}

func TestRunner_LoadMigrations(t *testing.T) {
	r := NewRunner(nil, logger.NewNop(), writeMigrations(t))

	migrations, err := r.LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "20250101000000_ticks", migrations[0].ID)
	assert.Equal(t, "ticks", migrations[0].Name)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), migrations[0].Timestamp)
	assert.Equal(t, "CREATE TABLE b;", migrations[1].UpSQL)
	assert.Equal(t, "DROP TABLE b;", migrations[1].DownSQL)
}

func TestRunner_MigrateUp(t *testing.T) {
	testCases := []struct {
		name     string
		steps    int
		mockFn   func(client *mock.MockClient, rows *mock.MockRowsInterface, tx *fakeTx)
		assertFn func(t *testing.T, tx *fakeTx, err error)
	}{
		{
			name: "applies pending migrations only",
			mockFn: func(client *mock.MockClient, rows *mock.MockRowsInterface, tx *fakeTx) {
				expectApplied(client, rows, "20250101000000_ticks")
				client.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				client.EXPECT().Exec(gomock.Any(), "CREATE TABLE b;").Return(nil)
				client.EXPECT().Exec(gomock.Any(), "INSERT INTO schema_migrations VALUES ($1, $2, now())", "20250102000000_hloc", "hloc").Return(nil)
			},
			assertFn: func(t *testing.T, tx *fakeTx, err error) {
				assert.NoError(t, err)
				assert.True(t, tx.committed)
			},
		},
		{
			name:  "limited by steps",
			steps: 1,
			mockFn: func(client *mock.MockClient, rows *mock.MockRowsInterface, tx *fakeTx) {
				expectApplied(client, rows)
				client.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				client.EXPECT().Exec(gomock.Any(), "CREATE TABLE a;").Return(nil)
				client.EXPECT().Exec(gomock.Any(), gomock.Any(), "20250101000000_ticks", "ticks").Return(nil)
			},
			assertFn: func(t *testing.T, tx *fakeTx, err error) {
				assert.NoError(t, err)
				assert.True(t, tx.committed)
			},
		},
		{
			name: "apply fails",
			mockFn: func(client *mock.MockClient, rows *mock.MockRowsInterface, tx *fakeTx) {
				expectApplied(client, rows)
				client.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				client.EXPECT().Exec(gomock.Any(), "CREATE TABLE a;").Return(errors.New("syntax error"))
			},
			assertFn: func(t *testing.T, tx *fakeTx, err error) {
				assert.Error(t, err)
				assert.True(t, tx.rolledBack)
				assert.False(t, tx.committed)
				assert.Contains(t, err.Error(), "20250101000000_ticks")
				assert.Contains(t, err.Error(), "syntax error")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := mock.NewMockClient(ctrl)
			rows := mock.NewMockRowsInterface(ctrl)
			tx := &fakeTx{}
			tc.mockFn(client, rows, tx)

			r := NewRunner(client, logger.NewNop(), writeMigrations(t))
			tc.assertFn(t, tx, r.MigrateUp(context.Background(), tc.steps))
		})
	}
}

func TestRunner_MigrateDown(t *testing.T) {
	t.Run("reverts the latest applied migration", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := mock.NewMockClient(ctrl)
		rows := mock.NewMockRowsInterface(ctrl)
		tx := &fakeTx{}
		expectApplied(client, rows, "20250101000000_ticks", "20250102000000_hloc")
		client.EXPECT().Begin(gomock.Any()).Return(tx, nil)
		client.EXPECT().Exec(gomock.Any(), "DROP TABLE b;").Return(nil)
		client.EXPECT().Exec(gomock.Any(), "DELETE FROM schema_migrations WHERE id = $1", "20250102000000_hloc").Return(nil)

		r := NewRunner(client, logger.NewNop(), writeMigrations(t))
		assert.NoError(t, r.MigrateDown(context.Background(), 1))
		assert.True(t, tx.committed)
	})

	t.Run("rejects zero steps", func(t *testing.T) {
		r := NewRunner(nil, logger.NewNop(), t.TempDir())
		assert.ErrorIs(t, r.MigrateDown(context.Background(), 0), ErrInvalidSteps)
	})

	t.Run("missing down file", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_ticks.up.sql"), []byte("CREATE TABLE a;"), 0o600))

		client := mock.NewMockClient(ctrl)
		rows := mock.NewMockRowsInterface(ctrl)
		expectApplied(client, rows, "20250101000000_ticks")

		r := NewRunner(client, logger.NewNop(), dir)
		assert.ErrorIs(t, r.MigrateDown(context.Background(), 1), ErrMissingDownSQL)
	})
}
