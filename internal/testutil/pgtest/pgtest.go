// Package pgtest starts a disposable Postgres container for integration tests.
package pgtest

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

var ErrDockerUnavailable = errors.New("docker is not available")

// Start runs postgres in Docker and returns an open connection plus a
// cleanup func that closes it and removes the container.
func Start() (*sql.DB, func(), error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDockerUnavailable, err)
	}
	if err := pool.Client.Ping(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDockerUnavailable, err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=tugas",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=tugas_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("starting postgres container: %w", err)
	}
	_ = resource.Expire(180)

	dsn := fmt.Sprintf("postgres://tugas:secret@%s/tugas_test?sslmode=disable", resource.GetHostPort("5432/tcp"))

	var db *sql.DB
	pool.MaxWait = 90 * time.Second
	err = pool.Retry(func() error {
		var err error
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return err
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return err
		}
		return nil
	})
	if err != nil {
		_ = pool.Purge(resource)
		return nil, nil, fmt.Errorf("waiting for postgres: %w", err)
	}

	cleanup := func() {
		_ = db.Close()
		_ = pool.Purge(resource)
	}
	return db, cleanup, nil
}
