// Package e2e provisions the services a bridge run reports to, so tests can
// drive full runs against real storage.
package e2e

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
)

// shared is a container started at most once per test binary and reused by
// every test that asks for it. Do not expect a clean state; it is shared
// across tests to simulate real-world usage.
type shared struct {
	once      sync.Once
	container testcontainers.Container
	env       map[string]string
	err       error
	wg        sync.WaitGroup
}

func (s *shared) use(t *testing.T, name string, start func(ctx context.Context) (testcontainers.Container, map[string]string, error)) {
	t.Helper()

	s.once.Do(func() {
		s.container, s.env, s.err = start(context.Background())
	})
	if s.err != nil {
		t.Fatalf("failed to start %s container: %v", name, s.err)
	}
	s.wg.Add(1)
	t.Cleanup(s.wg.Done)

	for k, v := range s.env {
		t.Setenv(k, v)
	}
}

func (s *shared) terminate(name string) {
	s.wg.Wait()
	if s.err == nil && s.container != nil {
		if err := s.container.Terminate(context.Background()); err != nil {
			fmt.Printf("failed to terminate %s container: %v", name, err)
		}
	}
}

var (
	postgresShared shared
	redisShared    shared
	minioShared    shared
)

// UsePostgres points the POSTGRES_* variables at a shared Postgres container.
func UsePostgres(t *testing.T) {
	t.Helper()
	postgresShared.use(t, "postgres", func(ctx context.Context) (testcontainers.Container, map[string]string, error) {
		c, err := postgres.Run(
			ctx,
			"postgres",
			postgres.WithDatabase("opusbridge"),
			postgres.WithUsername("user"),
			postgres.WithPassword("password"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			return c, nil, err
		}
		host, err := c.Host(ctx)
		if err != nil {
			return c, nil, err
		}
		port, err := c.MappedPort(ctx, "5432/tcp")
		if err != nil {
			return c, nil, err
		}
		return c, map[string]string{
			"POSTGRES_HOST":     host,
			"POSTGRES_PORT":     port.Port(),
			"POSTGRES_USERNAME": "user",
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_DATABASE": "opusbridge",
		}, nil
	})
}

// UseRedis points REDIS_ADDR at a shared Redis container.
func UseRedis(t *testing.T) {
	t.Helper()
	redisShared.use(t, "redis", func(ctx context.Context) (testcontainers.Container, map[string]string, error) {
		c, err := tcredis.Run(ctx, "redis:7")
		if err != nil {
			return c, nil, err
		}
		connStr, err := c.ConnectionString(ctx)
		if err != nil {
			return c, nil, err
		}
		opts, err := redis.ParseURL(connStr)
		if err != nil {
			return c, nil, err
		}
		return c, map[string]string{"REDIS_ADDR": opts.Addr}, nil
	})
}

// UseMinio points the MINIO_* variables at a shared MinIO container.
func UseMinio(t *testing.T) {
	t.Helper()
	minioShared.use(t, "minio", func(ctx context.Context) (testcontainers.Container, map[string]string, error) {
		c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "minio/minio:latest",
				ExposedPorts: []string{"9000/tcp"},
				Env: map[string]string{
					"MINIO_ROOT_USER":     minioUser,
					"MINIO_ROOT_PASSWORD": minioPassword,
				},
				Cmd:        []string{"server", "/data"},
				WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
			},
			Started: true,
		})
		if err != nil {
			return c, nil, err
		}
		endpoint, err := c.PortEndpoint(ctx, "9000/tcp", "")
		if err != nil {
			return c, nil, err
		}
		return c, map[string]string{
			"MINIO_ENDPOINT": endpoint,
			"MINIO_USERNAME": minioUser,
			"MINIO_PASSWORD": minioPassword,
		}, nil
	})
}

// TerminateAll stops every container once the tests using it are done.
func TerminateAll() {
	postgresShared.terminate("postgres")
	redisShared.terminate("redis")
	minioShared.terminate("minio")
}
