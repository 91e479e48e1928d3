package postgres

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/go-scripts/quotes/internal/store/storetest"
)

// startPostgres runs a throwaway Postgres container. It needs Docker, so it
// only runs when QUOTES_PG_TESTS=1.
func startPostgres(t *testing.T) string {
	t.Helper()
	if os.Getenv("QUOTES_PG_TESTS") != "1" {
		t.Skip("set QUOTES_PG_TESTS=1 to run Postgres tests")
	}

	testcontainers.Logger = stdlog.New(io.Discard, "", 0)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "quotes",
				"POSTGRES_PASSWORD": "quotes",
				"POSTGRES_DB":       "quotes",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://quotes:quotes@%s:%s/quotes?sslmode=disable", host, port.Port())
}

func TestStore(t *testing.T) {
	dsn := startPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	storetest.Run(t, s)

	// Reopening runs the migration again against the existing schema.
	again, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer again.Close()

	n, err := again.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, n)
}
