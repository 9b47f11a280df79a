package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bobmcallan/quanta/internal/common"
)

var (
	surrealOnce      sync.Once
	surrealContainer *surrealDBContainer
	surrealError     error
)

type surrealDBContainer struct {
	container testcontainers.Container
	host      string
	port      string
}

func (c *surrealDBContainer) address() string {
	return fmt.Sprintf("ws://%s:%s/rpc", c.host, c.port)
}

// startSurrealDB starts a shared SurrealDB container for the test run.
// Uses sync.Once so only one container is created per process.
func startSurrealDB(t *testing.T) *surrealDBContainer {
	t.Helper()

	surrealOnce.Do(func() {
		ctx := context.Background()

		req := testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--user", "root", "--pass", "root"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("8000/tcp"),
				wait.ForLog("Started web server"),
			).WithDeadline(60 * time.Second),
		}

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			surrealError = fmt.Errorf("start SurrealDB container: %w", err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			container.Terminate(ctx)
			surrealError = fmt.Errorf("get SurrealDB host: %w", err)
			return
		}

		mappedPort, err := container.MappedPort(ctx, "8000/tcp")
		if err != nil {
			container.Terminate(ctx)
			surrealError = fmt.Errorf("get SurrealDB port: %w", err)
			return
		}

		surrealContainer = &surrealDBContainer{
			container: container,
			host:      host,
			port:      mappedPort.Port(),
		}
	})

	if surrealError != nil {
		t.Fatalf("SurrealDB container failed: %v", surrealError)
	}

	return surrealContainer
}

// testStore connects a Store to the shared container using a unique
// database name per test for isolation.
func testStore(t *testing.T) *Store {
	t.Helper()

	sc := startSurrealDB(t)

	// Sanitize t.Name() because subtests produce names like "Test/subtest"
	// and SurrealDB rejects "/" in database names.
	sanitized := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dbName := fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000)

	store, err := NewStore(common.NewSilentLogger(), common.SurrealDBConfig{
		URL:       sc.address(),
		Namespace: "quanta_test",
		Database:  dbName,
		Username:  "root",
		Password:  "root",
	})
	if err != nil {
		t.Fatalf("connect store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
