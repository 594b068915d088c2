package app

import (
	"context"
	"iter"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/janitor/internal/channels/discord"
	"github.com/aatumaykin/janitor/internal/commands"
	"github.com/aatumaykin/janitor/internal/config"
	"github.com/aatumaykin/janitor/internal/constants"
	"github.com/aatumaykin/janitor/internal/logger"
	"github.com/aatumaykin/janitor/internal/pidfile"
	"github.com/aatumaykin/janitor/internal/platform"
)

// fakePlatform is an in-memory guild "g" with channel "100" (#general).
type fakePlatform struct {
	mu        sync.Mutex
	ready     chan struct{}
	started   bool
	stopped   bool
	handler   discord.CommandHandler
	reactions discord.ReactionDispatcher
	history   map[string][]platform.Message
	deleted   []string
	replies   []string
	reacts    []string
}

func newFakePlatform() *fakePlatform {
	old := time.Now().Add(-24 * time.Hour)
	return &fakePlatform{
		ready: make(chan struct{}),
		history: map[string][]platform.Message{
			"100": {
				{ID: "fresh", ChannelID: "100", CreatedAt: time.Now()},
				{ID: "old-1", ChannelID: "100", CreatedAt: old},
				{ID: "pinned", ChannelID: "100", CreatedAt: old, Pinned: true},
				{ID: "old-2", ChannelID: "100", CreatedAt: old},
			},
		},
	}
}

func (f *fakePlatform) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	return nil
}

func (f *fakePlatform) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakePlatform) Ready() <-chan struct{} { return f.ready }

func (f *fakePlatform) SetHandlers(cmd discord.CommandHandler, reactions discord.ReactionDispatcher) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler, f.reactions = cmd, reactions
}

func (f *fakePlatform) History(_ context.Context, channelID string) iter.Seq2[platform.Message, error] {
	f.mu.Lock()
	msgs := append([]platform.Message(nil), f.history[channelID]...)
	f.mu.Unlock()
	return func(yield func(platform.Message, error) bool) {
		for _, m := range msgs {
			if !yield(m, nil) {
				return
			}
		}
	}
}

func (f *fakePlatform) DeleteMessages(_ context.Context, _ string, msgs []platform.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.deleted = append(f.deleted, m.ID)
	}
	return nil
}

func (f *fakePlatform) SetBusy(context.Context, platform.Channel) error { return nil }
func (f *fakePlatform) SetIdle(context.Context) error                   { return nil }

func (f *fakePlatform) Reply(_ context.Context, _ platform.Reply, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, content)
	return nil
}

func (f *fakePlatform) React(_ context.Context, _ platform.Reply, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reacts = append(f.reacts, emoji)
	return nil
}

func (f *fakePlatform) StartTyping(context.Context, string) func() { return func() {} }

func (f *fakePlatform) Guild(context.Context, string) (platform.Guild, error) {
	return platform.Guild{ID: "g", Name: "Test Guild"}, nil
}

func (f *fakePlatform) Channel(_ context.Context, id string) (platform.Channel, error) {
	return platform.Channel{ID: id, GuildID: "g", Name: "general"}, nil
}

func (f *fakePlatform) GuildChannels(context.Context, string) ([]platform.Channel, error) {
	return []platform.Channel{{ID: "100", GuildID: "g", Name: "general"}}, nil
}

func (f *fakePlatform) IsAdministrator(_ context.Context, _, _, userID string) (bool, error) {
	return userID == "admin", nil
}

func (f *fakePlatform) SendPrompt(context.Context, string, string, string) (string, error) {
	return "prompt", nil
}

func (f *fakePlatform) AddOption(context.Context, string, string, string) error { return nil }
func (f *fakePlatform) DeletePrompt(context.Context, string, string) error      { return nil }

func (f *fakePlatform) Guilds(context.Context) ([]platform.Guild, error) {
	return []platform.Guild{{ID: "g", Name: "Test Guild"}}, nil
}

func (f *fakePlatform) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "janitor.db")
	cfg.Sweep.Interval = "@every 1h"
	cfg.Sweep.Workers = 2
	return cfg
}

func TestApp_SweepsAfterReady(t *testing.T) {
	cfg := testConfig(t)
	fp := newFakePlatform()
	a := New(cfg, logger.Nop(), "", WithPlatform(fp))

	require.NoError(t, a.Initialize(context.Background()))
	t.Cleanup(func() { _ = a.Shutdown() })
	require.NotNil(t, fp.handler)
	require.NotNil(t, fp.reactions)

	fp.handler.Handle(context.Background(), commands.Invocation{
		GuildID: "g", ChannelID: "100", MessageID: "cmd", AuthorID: "admin",
		Text: "channels add <#100>", Invoker: "@janitor",
	})
	assert.Equal(t, []string{"✅"}, fp.reacts)

	// Nothing is swept before the gateway is ready.
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, fp.deletedIDs())

	close(fp.ready)
	assert.Eventually(t, func() bool {
		return len(fp.deletedIDs()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"old-1", "old-2"}, fp.deletedIDs())
}

func TestApp_RunAndShutdown(t *testing.T) {
	cfg := testConfig(t)
	fp := newFakePlatform()
	a := New(cfg, logger.Nop(), "", WithPlatform(fp))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	pidPath := cfg.PIDFile(constants.PIDFileName)
	assert.Eventually(t, func() bool {
		_, err := os.Stat(pidPath)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.True(t, fp.started)
	assert.True(t, fp.stopped)
	_, err := os.Stat(pidPath)
	assert.True(t, os.IsNotExist(err))

	// A second shutdown is a no-op.
	assert.NoError(t, a.Shutdown())
}

func TestApp_RefusesSecondInstance(t *testing.T) {
	cfg := testConfig(t)
	pidPath := cfg.PIDFile(constants.PIDFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(pidPath), 0o755))
	require.NoError(t, os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getppid())), 0o600))

	fp := newFakePlatform()
	err := New(cfg, logger.Nop(), "", WithPlatform(fp)).Run(context.Background())

	assert.ErrorIs(t, err, pidfile.ErrAlreadyRunning)
	assert.False(t, fp.started)
}

func TestApp_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sweep.Interval = "every so often"
	fp := newFakePlatform()

	err := New(cfg, logger.Nop(), "", WithPlatform(fp)).Run(context.Background())
	assert.ErrorContains(t, err, "invalid sweep schedule")
	assert.False(t, fp.started)
}

func TestMetricsServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Namespace: "janitor", Name: "test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()
	srv := newMetricsServer("127.0.0.1:0", reg)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "janitor_test_total 1")
}
