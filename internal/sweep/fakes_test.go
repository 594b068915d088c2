package sweep

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/aatumaykin/janitor/internal/platform"
)

type fakeHistory struct {
	messages []platform.Message
	err      error
	// errAfter yields err after this many messages when err is set.
	errAfter int
	// gate, when set, blocks the first page until closed.
	gate chan struct{}
}

func (f *fakeHistory) History(ctx context.Context, channelID string) iter.Seq2[platform.Message, error] {
	return func(yield func(platform.Message, error) bool) {
		if f.gate != nil {
			select {
			case <-f.gate:
			case <-ctx.Done():
				yield(platform.Message{}, ctx.Err())
				return
			}
		}
		for i, m := range f.messages {
			if f.err != nil && i == f.errAfter {
				yield(platform.Message{}, f.err)
				return
			}
			if !yield(m, nil) {
				return
			}
		}
		if f.err != nil && f.errAfter >= len(f.messages) {
			yield(platform.Message{}, f.err)
		}
	}
}

type fakeDeleter struct {
	mu    sync.Mutex
	calls [][]platform.Message
	err   error
}

func (f *fakeDeleter) DeleteMessages(_ context.Context, _ string, messages []platform.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, slices.Clone(messages))
	return f.err
}

func (f *fakeDeleter) sizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sizes := make([]int, len(f.calls))
	for i, c := range f.calls {
		sizes[i] = len(c)
	}
	return sizes
}

func (f *fakeDeleter) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, c := range f.calls {
		for _, m := range c {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

type fakeStatus struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (f *fakeStatus) SetBusy(_ context.Context, ch platform.Channel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "busy:"+ch.Name)
	return f.err
}

func (f *fakeStatus) SetIdle(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "idle")
	return f.err
}

func (f *fakeStatus) log() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.events)
}

type fakeLister struct {
	channels []platform.Channel
	err      error
}

func (f *fakeLister) GuildChannels(context.Context, string) ([]platform.Channel, error) {
	return f.channels, f.err
}
