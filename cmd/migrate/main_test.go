package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"sales_visits_backend/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConfig struct{}

func (stubConfig) GetDatabaseURL() string { return "postgres://localhost/visits" }

func executeCommand(m migrator, load func() (config.DatabaseConfig, error), args ...string) (string, error) {
	root := newRootCmd(m, load)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func okLoad() (config.DatabaseConfig, error) { return stubConfig{}, nil }

func TestUpRunsMigrations(t *testing.T) {
	var called []string
	record := func(name string) migrationFunc {
		return func(_ context.Context, cfg config.DatabaseConfig) error {
			called = append(called, name+" "+cfg.GetDatabaseURL())
			return nil
		}
	}
	m := migrator{up: record("up"), down: record("down"), status: record("status")}

	out, err := executeCommand(m, okLoad, "up")
	require.NoError(t, err)
	assert.Equal(t, "migrations applied\n", out)

	_, err = executeCommand(m, okLoad, "down")
	require.NoError(t, err)
	_, err = executeCommand(m, okLoad, "status")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"up postgres://localhost/visits",
		"down postgres://localhost/visits",
		"status postgres://localhost/visits",
	}, called)
}

func TestMigrationErrorIsWrapped(t *testing.T) {
	cause := errors.New("dirty database")
	fail := func(context.Context, config.DatabaseConfig) error { return cause }

	_, err := executeCommand(migrator{up: fail, down: fail, status: fail}, okLoad, "down")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "migrate down")
}

func TestConfigErrorStopsCommand(t *testing.T) {
	ran := false
	up := func(context.Context, config.DatabaseConfig) error {
		ran = true
		return nil
	}
	load := func() (config.DatabaseConfig, error) { return nil, errors.New("DATABASE_URL is required") }

	_, err := executeCommand(migrator{up: up}, load, "up")
	require.Error(t, err)
	assert.False(t, ran)
}

func TestRejectsExtraArgs(t *testing.T) {
	_, err := executeCommand(migrator{}, okLoad, "up", "now")
	assert.Error(t, err)
}
