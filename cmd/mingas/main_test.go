package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mingas-api/internal/client"
	"mingas-api/internal/config"
	"mingas-api/internal/db"
	"mingas-api/internal/metrics"
)

var now = time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)

type testCLI struct {
	t   *testing.T
	url string
	dsn string
}

// setupCLI starts the API on a temp database.
func setupCLI(t *testing.T) *testCLI {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "cli.db")
	store, err := db.NewDB(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.InitSchema(context.Background()))

	srv := httptest.NewServer(newServer(config.DefaultConfig(), store, metrics.New()).Handler)
	t.Cleanup(srv.Close)
	return &testCLI{t: t, url: srv.URL, dsn: dsn}
}

// run executes one command line against the test API, feeding input to
// any prompt.
func (c *testCLI) run(input string, args ...string) (stdout, stderr string, err error) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	a := newApp(strings.NewReader(input), &out, &errOut)
	a.now = func() time.Time { return now }

	cmd := a.rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--api-url", c.url}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func (c *testCLI) mustRun(args ...string) string {
	c.t.Helper()
	out, errOut, err := c.run("", args...)
	require.NoError(c.t, err, errOut)
	return out
}

func createArgs(title string) []string {
	return []string{"events", "create",
		"--title", title,
		"--description", "Limpieza comunitaria",
		"--date", "2030-01-15T09:00:00Z",
		"--location", "Parque Central",
	}
}

func TestVersion(t *testing.T) {
	c := &testCLI{t: t, url: "http://localhost:0"}
	out := c.mustRun("version")
	assert.Equal(t, "mingas version "+Version+" (build: dev)\n", out)
}

func TestEventsLifecycle(t *testing.T) {
	c := setupCLI(t)

	out := c.mustRun(createArgs("Minga del Parque")...)
	assert.Contains(t, out, "Created event 1: Minga del Parque")
	c.mustRun(createArgs("Sembratón")...)

	out = c.mustRun("events", "list")
	assert.Contains(t, out, "PARTICIPANTS")
	assert.Contains(t, out, "Minga del Parque")
	assert.Contains(t, out, "upcoming")

	out = c.mustRun("events", "list", "--search", "sembra")
	assert.NotContains(t, out, "Minga del Parque")
	assert.Contains(t, out, "Sembratón")

	out = c.mustRun("events", "list", "--to", "2029-12-31")
	assert.Equal(t, "No events found.\n", out)

	out = c.mustRun("events", "update", "1", "--location", "Plaza Mayor")
	assert.Contains(t, out, "Updated event 1: Minga del Parque")
	assert.Contains(t, out, "Plaza Mayor")

	out = c.mustRun("events", "show", "1")
	assert.Contains(t, out, "Location:  Plaza Mayor")
	assert.Contains(t, out, "0 participants")

	out = c.mustRun("events", "delete", "1", "--yes")
	assert.Equal(t, "Deleted event 1\n", out)

	_, errOut, err := c.run("", "events", "show", "1")
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, "Evento no encontrado\n", errOut)
}

func TestEventsCreate_PrintsValidationErrors(t *testing.T) {
	c := setupCLI(t)

	_, errOut, err := c.run("", "events", "create", "--title", "Minga")
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, strings.Join([]string{
		client.MsgInvalidData,
		"  - Description can't be blank",
		"  - Date can't be blank",
		"  - Location can't be blank",
	}, "\n")+"\n", errOut)
}

func TestEventsDelete_Confirmation(t *testing.T) {
	c := setupCLI(t)
	c.mustRun(createArgs("Minga")...)

	out, _, err := c.run("n\n", "events", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `Delete "Minga" and its 0 registrations? [y/N]: `)
	assert.Contains(t, out, "Cancelled.")
	c.mustRun("events", "show", "1")

	out, _, err = c.run("y\n", "events", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted event 1")
}

func TestParticipantsAndMembers(t *testing.T) {
	c := setupCLI(t)
	c.mustRun(createArgs("Minga")...)
	c.mustRun(createArgs("Sembratón")...)

	out := c.mustRun("participants", "register", "1", "--name", "Ana", "--email", "ana@email.com")
	assert.Equal(t, "Registered Ana <ana@email.com> as participant 1 of event 1\n", out)
	c.mustRun("participants", "register", "2", "--name", "Ana María", "--email", "ANA@email.com")
	c.mustRun("participants", "register", "2", "--name", "Luis", "--email", "luis@email.com")

	_, errOut, err := c.run("", "participants", "register", "1", "--name", "Ana", "--email", "Ana@Email.com")
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, "Email ya está registrado para este evento\n", errOut)

	_, errOut, err = c.run("", "participants", "register", "1", "--name", "", "--email", "bad")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, "  - Name can't be blank\n")
	assert.Contains(t, errOut, "  - Email is invalid\n")

	out = c.mustRun("participants", "list", "2")
	assert.Contains(t, out, "2 participants")
	assert.Less(t, strings.Index(out, "Ana María"), strings.Index(out, "Luis"))

	out = c.mustRun("members")
	assert.Contains(t, out, "2 members")
	assert.Contains(t, out, "Ana María <ana@email.com>, 2 events")
	assert.Contains(t, out, "Luis <luis@email.com>, 1 event\n")

	out, _, err = c.run("yes\n", "participants", "cancel", "3")
	require.NoError(t, err)
	assert.Contains(t, out, `Cancel the registration of Luis for "Sembratón"?`)
	assert.Contains(t, out, "Cancelled registration 3")

	_, errOut, err = c.run("", "participants", "cancel", "3", "--yes")
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, "Participante no encontrado\n", errOut)
}

func TestInvalidID(t *testing.T) {
	c := setupCLI(t)
	_, _, err := c.run("", "events", "show", "abc")
	assert.EqualError(t, err, `invalid id "abc"`)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := &testCLI{t: t, url: url}
	_, errOut, err := c.run("", "events", "list")
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, client.MsgNetwork+"\n", errOut)
}

func TestSeedAndMigrate(t *testing.T) {
	c := setupCLI(t)
	dsn := "file:" + filepath.Join(t.TempDir(), "seed.db")

	out := c.mustRun("--dsn", dsn, "migrate")
	assert.Equal(t, "database schema initialized\n", out)

	out = c.mustRun("--dsn", dsn, "seed")
	assert.Contains(t, out, "5 events, 13 participants\n")
	assert.Contains(t, out, "4 upcoming, 1 past\n")
	assert.Contains(t, out, "Minga de Limpieza del Parque Central")
	assert.NotContains(t, out, "(Pasado)")
}

func TestConfigErrors(t *testing.T) {
	c := &testCLI{t: t, url: "http://localhost:0"}

	_, _, err := c.run("", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "events", "list")
	assert.ErrorContains(t, err, "load config")

	_, _, err = c.run("", "--log-level", "loud", "events", "list")
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestNewServer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Addr = ":9999"
	cfg.Metrics.Enabled = false

	server := newServer(cfg, nil, nil)
	assert.Equal(t, ":9999", server.Addr)
	assert.Equal(t, cfg.Server.ReadTimeout, server.ReadTimeout)
	assert.Equal(t, cfg.Server.IdleTimeout, server.IdleTimeout)

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
