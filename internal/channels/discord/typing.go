package discord

import (
	"context"
	"sync"
	"time"

	"github.com/aatumaykin/janitor/internal/logger"
)

// typingInterval keeps the indicator alive; Discord shows it for ~10s.
const typingInterval = 8 * time.Second

// typingManager runs one typing indicator loop per start call.
type typingManager struct {
	session Session
	logger  *logger.Logger

	mu      sync.Mutex
	nextID  int
	cancels map[int]context.CancelFunc
}

func newTypingManager(session Session, log *logger.Logger) *typingManager {
	return &typingManager{
		session: session,
		logger:  log,
		cancels: make(map[int]context.CancelFunc),
	}
}

// Start sends a typing indicator now and then every typingInterval until
// the returned stop func is called or ctx ends.
func (tm *typingManager) Start(ctx context.Context, channelID string) func() {
	typingCtx, cancel := context.WithCancel(ctx)

	tm.mu.Lock()
	id := tm.nextID
	tm.nextID++
	tm.cancels[id] = cancel
	tm.mu.Unlock()

	go func() {
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()

		tm.send(typingCtx, channelID)
		for {
			select {
			case <-typingCtx.Done():
				return
			case <-ticker.C:
				tm.send(typingCtx, channelID)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			tm.mu.Lock()
			delete(tm.cancels, id)
			tm.mu.Unlock()
			cancel()
		})
	}
}

// StopAll stops all typing indicators.
func (tm *typingManager) StopAll() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for id, cancel := range tm.cancels {
		cancel()
		delete(tm.cancels, id)
	}
}

func (tm *typingManager) active() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.cancels)
}

func (tm *typingManager) send(ctx context.Context, channelID string) {
	if err := tm.session.ChannelTyping(ctx, channelID); err != nil && ctx.Err() == nil {
		tm.logger.WarnCtx(ctx, "failed to send typing indicator",
			logger.Field{Key: "channel_id", Value: channelID},
			logger.Field{Key: "error", Value: err})
	}
}
