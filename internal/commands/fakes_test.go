package commands

import (
	"context"
	"sync"

	"github.com/aatumaykin/janitor/internal/confirm"
	"github.com/aatumaykin/janitor/internal/constants"
	"github.com/aatumaykin/janitor/internal/platform"
	"github.com/aatumaykin/janitor/internal/store"
	"github.com/aatumaykin/janitor/internal/sweep"
)

// memStore is an in-memory Store with the same semantics as the SQLite one.
type memStore struct {
	mu      sync.Mutex
	entries map[string]store.ChannelConfig
	order   []string
	err     error
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]store.ChannelConfig{}}
}

func (m *memStore) Add(_ context.Context, guildID, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.entries[channelID]; ok {
		return store.ErrAlreadyExists
	}
	m.entries[channelID] = store.ChannelConfig{ChannelID: channelID, GuildID: guildID, RetentionMinutes: constants.DefaultRetentionMinutes}
	m.order = append(m.order, channelID)
	return nil
}

func (m *memStore) Remove(_ context.Context, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.entries[channelID]; !ok {
		return store.ErrNotFound
	}
	delete(m.entries, channelID)
	return nil
}

func (m *memStore) Exists(_ context.Context, channelID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.entries[channelID]
	return ok, nil
}

func (m *memStore) ListByGuild(_ context.Context, guildID string) ([]store.ChannelConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []store.ChannelConfig
	for _, id := range m.order {
		if c, ok := m.entries[id]; ok && c.GuildID == guildID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) SetRetention(_ context.Context, channelID string, minutes int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.entries[channelID]
	if !ok {
		return 0, store.ErrNotFound
	}
	c.RetentionMinutes = max(minutes, constants.MinRetentionMinutes)
	m.entries[channelID] = c
	return c.RetentionMinutes, nil
}

func (m *memStore) Retention(_ context.Context, channelID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.entries[channelID]; ok {
		return c.RetentionMinutes, nil
	}
	return constants.DefaultRetentionMinutes, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type fakeResponder struct {
	mu        sync.Mutex
	replies   []string
	reactions []string
	typing    int
	stopped   int
}

func (f *fakeResponder) Reply(_ context.Context, _ platform.Reply, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, content)
	return nil
}

func (f *fakeResponder) React(_ context.Context, _ platform.Reply, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, emoji)
	return nil
}

func (f *fakeResponder) StartTyping(context.Context, string) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typing++
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stopped++
	}
}

type fakeDirectory struct {
	guild    platform.Guild
	channels []platform.Channel
	admins   map[string]bool
	adminErr error
}

func (f *fakeDirectory) Guild(context.Context, string) (platform.Guild, error) {
	return f.guild, nil
}

func (f *fakeDirectory) Channel(_ context.Context, channelID string) (platform.Channel, error) {
	for _, ch := range f.channels {
		if ch.ID == channelID {
			return ch, nil
		}
	}
	return platform.Channel{ID: channelID}, nil
}

func (f *fakeDirectory) GuildChannels(context.Context, string) ([]platform.Channel, error) {
	return f.channels, nil
}

func (f *fakeDirectory) IsAdministrator(_ context.Context, _, _, userID string) (bool, error) {
	return f.admins[userID], f.adminErr
}

type fakeSweeper struct {
	mu   sync.Mutex
	jobs []sweep.Job
	err  error
}

func (f *fakeSweeper) Sweep(_ context.Context, job sweep.Job) (sweep.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return sweep.Result{Deleted: 3}, f.err
}

type fakeConfirmer struct {
	outcome  confirm.Outcome
	err      error
	requests []confirm.Request
}

func (f *fakeConfirmer) Request(_ context.Context, req confirm.Request) (confirm.Outcome, error) {
	f.requests = append(f.requests, req)
	return f.outcome, f.err
}

// dirResolver resolves through the directory's live channel list.
type dirResolver struct{ dir *fakeDirectory }

func (r dirResolver) Resolve(_ context.Context, _ string, ids []string) ([]platform.Channel, error) {
	var out []platform.Channel
	for _, id := range ids {
		for _, ch := range r.dir.channels {
			if ch.ID == id {
				out = append(out, ch)
			}
		}
	}
	return out, nil
}
