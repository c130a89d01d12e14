//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/audiograb-server/internal/model"
	repo "github.com/dtroode/audiograb-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "audiograb_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/audiograb_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestDownloadRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	dr := repo.NewDownloadRepository(conn)

	d := model.Download{
		ID:        uuid.New(),
		URL:       "https://youtu.be/dQw4w9WgXcQ",
		MaxSizeMB: 15,
		Status:    model.DownloadStatusCreated,
		CreatedAt: time.Now().UTC(),
	}
	saved, err := dr.Create(ctx, d)
	require.NoError(t, err)
	require.Equal(t, d.ID, saved.ID)
	require.Nil(t, saved.UpdatedAt)

	d.Status = model.DownloadStatusCompleted
	d.Progress = 100
	d.MP3Path = "download/song.mp3"
	updated, err := dr.Update(ctx, d)
	require.NoError(t, err)
	require.Equal(t, model.DownloadStatusCompleted, updated.Status)
	require.NotNil(t, updated.UpdatedAt)

	got, err := dr.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, "download/song.mp3", got.MP3Path)
	require.Equal(t, 15, got.MaxSizeMB)

	_, err = dr.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = dr.Update(ctx, model.Download{ID: uuid.New(), Status: model.DownloadStatusFailed})
	require.ErrorIs(t, err, model.ErrNotFound)

	// Migrations are idempotent.
	again, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}
