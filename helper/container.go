package helper

import (
	"context"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MustStartPostgresContainer starts a throwaway PostgreSQL container for
// tests and examples. It returns a teardown function and the mapped port.
func MustStartPostgresContainer() (func(context.Context) error, string, error) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("database"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", NewError("start postgres container", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return nil, "", NewError("get mapped port", err)
	}

	teardown := func(ctx context.Context) error {
		return container.Terminate(ctx)
	}

	return teardown, mappedPort.Port(), nil
}
