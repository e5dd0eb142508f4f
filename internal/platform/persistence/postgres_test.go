package persistence

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDB_Pool(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	var nilPool *pgxpool.Pool
	db := &PostgresDB{
		pool:   nilPool,
		logger: logger,
	}
	assert.Equal(t, nilPool, db.Pool())
}

func TestRunInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE staging_transactions").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		tx, err := mock.Begin(ctx)
		require.NoError(t, err)

		err = runInTx(ctx, tx, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, "UPDATE staging_transactions SET lock_owner = NULL")
			return err
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		tx, err := mock.Begin(ctx)
		require.NoError(t, err)

		fnErr := errors.New("boom")
		err = runInTx(ctx, tx, func(tx pgx.Tx) error { return fnErr })
		assert.ErrorIs(t, err, fnErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and repanics", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		tx, err := mock.Begin(ctx)
		require.NoError(t, err)

		assert.Panics(t, func() {
			_ = runInTx(ctx, tx, func(tx pgx.Tx) error { panic("bad") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
