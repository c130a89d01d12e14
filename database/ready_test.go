package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitReady(t *testing.T) {
	t.Parallel()

	t.Run("ready after retries", func(t *testing.T) {
		t.Parallel()

		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectPing()

		require.NoError(t, WaitReady(context.Background(), db, 5, time.Millisecond))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gives up", func(t *testing.T) {
		t.Parallel()

		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		down := errors.New("connection refused")
		mock.ExpectPing().WillReturnError(down)
		mock.ExpectPing().WillReturnError(down)

		err = WaitReady(context.Background(), db, 2, time.Millisecond)
		assert.ErrorIs(t, err, down)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("context canceled", func(t *testing.T) {
		t.Parallel()

		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err = WaitReady(ctx, db, 3, time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMigrationsEmbedded(t *testing.T) {
	t.Parallel()

	entries, err := migrations.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "00001_downloads.sql", entries[0].Name())
}
