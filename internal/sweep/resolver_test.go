package sweep

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/janitor/internal/logger"
	"github.com/aatumaykin/janitor/internal/platform"
)

func TestResolve(t *testing.T) {
	general := platform.Channel{ID: "1", GuildID: "g", Name: "general"}
	random := platform.Channel{ID: "2", GuildID: "g", Name: "random"}
	dupA := platform.Channel{ID: "3", GuildID: "g", Name: "dup-a"}
	dupB := platform.Channel{ID: "3", GuildID: "g", Name: "dup-b"}

	buf := &bytes.Buffer{}
	log, err := logger.NewWithWriter(buf, "text", slog.LevelDebug)
	require.NoError(t, err)

	resolver := NewResolver(&fakeLister{channels: []platform.Channel{general, random, dupA, dupB}}, log)

	got, err := resolver.Resolve(context.Background(), "g", []string{"2", "9", "3", "1"})
	require.NoError(t, err)

	assert.Equal(t, []platform.Channel{random, general}, got)
	assert.Contains(t, buf.String(), "configured channel not found")
	assert.Contains(t, buf.String(), "configured channel is ambiguous")
}

func TestResolve_NoIDs(t *testing.T) {
	lister := &fakeLister{err: errors.New("must not be called")}
	got, err := NewResolver(lister, nil).Resolve(context.Background(), "g", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolve_ListingFailure(t *testing.T) {
	boom := errors.New("401 unauthorized")
	_, err := NewResolver(&fakeLister{err: boom}, nil).Resolve(context.Background(), "g", []string{"1"})
	assert.ErrorIs(t, err, boom)
}
