package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/janitor/internal/confirm"
	"github.com/aatumaykin/janitor/internal/platform"
)

type harness struct {
	store     *memStore
	responder *fakeResponder
	directory *fakeDirectory
	sweeper   *fakeSweeper
	confirmer *fakeConfirmer
	handler   *Handler
}

func newHarness() *harness {
	dir := &fakeDirectory{
		guild: platform.Guild{ID: "g", Name: "Test Guild"},
		channels: []platform.Channel{
			{ID: "100", GuildID: "g", Name: "general"},
			{ID: "200", GuildID: "g", Name: "spam"},
		},
		admins: map[string]bool{"admin": true},
	}
	h := &harness{
		store:     newMemStore(),
		responder: &fakeResponder{},
		directory: dir,
		sweeper:   &fakeSweeper{},
		confirmer: &fakeConfirmer{},
	}
	h.handler = NewHandler(Deps{
		Store:     h.store,
		Responder: h.responder,
		Directory: dir,
		Resolver:  dirResolver{dir: dir},
		Sweeper:   h.sweeper,
		Confirmer: h.confirmer,
	})
	return h
}

func (h *harness) run(text string) {
	h.runAs("admin", text)
}

func (h *harness) runAs(author, text string) {
	h.handler.Handle(context.Background(), Invocation{
		GuildID:   "g",
		ChannelID: "100",
		MessageID: "cmd",
		AuthorID:  author,
		Text:      text,
		Invoker:   "@janitor",
	})
}

func TestChannelsAdd(t *testing.T) {
	h := newHarness()

	h.run("channels add <#200>")
	assert.Equal(t, []string{"✅"}, h.responder.reactions)
	assert.Empty(t, h.responder.replies)

	h.run("channels add spam")
	assert.Equal(t, 1, h.store.count())
	assert.Equal(t, []string{"I am already sweeping <#200>"}, h.responder.replies)
}

func TestChannelsRemove(t *testing.T) {
	h := newHarness()

	h.run("channels remove 100")
	assert.Equal(t, []string{"I am not currently sweeping <#100>"}, h.responder.replies)

	h.run("channels add 100")
	h.run("channels remove #general")
	assert.Zero(t, h.store.count())
	assert.Equal(t, []string{"✅", "✅"}, h.responder.reactions)
}

func TestChannelsList(t *testing.T) {
	h := newHarness()

	h.run("channels list")
	require.Len(t, h.responder.replies, 1)
	assert.Equal(t, "I'm not configured to sweep any channels in `Test Guild`", h.responder.replies[0])

	require.NoError(t, h.store.Add(context.Background(), "g", "200"))
	require.NoError(t, h.store.Add(context.Background(), "g", "999")) // deleted channel
	require.NoError(t, h.store.Add(context.Background(), "g", "100"))

	h.run("channels list")
	require.Len(t, h.responder.replies, 2)
	assert.Equal(t, "In `Test Guild` I am configured to sweep:\n\t<#200>\n\t<#100>", h.responder.replies[1])
}

func TestChannels_InputErrors(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantReply string
		wantUsage string
	}{
		{"no subcommand", "channels", "Expected a subcommand", "@janitor channels <subcommand>"},
		{"unknown subcommand", "channels purge", "Expected a subcommand", "@janitor channels <subcommand>"},
		{"missing channel", "channels add", "channel is a required argument that is missing.", "@janitor channels add <channel>"},
		{"unknown channel", "channels add <#555>", `Channel "<#555>" not found.`, "@janitor channels add <channel>"},
		{"too many", "channels remove 100 200", "Too many arguments passed to channels remove", "@janitor channels remove <channel>"},
		{"unbalanced quote", `channels add "spam`, "invalid command line string", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.run(tt.text)

			assert.Equal(t, []string{"💩"}, h.responder.reactions)
			require.NotEmpty(t, h.responder.replies)
			assert.Equal(t, tt.wantReply, h.responder.replies[0])
			if tt.wantUsage != "" {
				require.Len(t, h.responder.replies, 2)
				assert.Contains(t, h.responder.replies[1], tt.wantUsage)
			}
			assert.Zero(t, h.store.count())
		})
	}
}

func TestMaxAge(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.store.Add(context.Background(), "g", "100"))

	h.run("maxage")
	h.run("maxage 90")
	h.run("maxage 0")
	h.run("maxage")

	assert.Equal(t, []string{
		"Messages in <#100> will be deleted after 5 minutes",
		"Messages in <#100> will be deleted after 1 hours, 30 minutes",
		"Messages in <#100> will be deleted after 1 minutes",
		"Messages in <#100> will be deleted after 1 minutes",
	}, h.responder.replies)
	assert.Empty(t, h.responder.reactions)
}

func TestMaxAge_Errors(t *testing.T) {
	h := newHarness()
	h.run("maxage 10")
	assert.Equal(t, []string{"Sweeping is not enabled for <#100>"}, h.responder.replies)
	assert.Empty(t, h.responder.reactions)

	h = newHarness()
	require.NoError(t, h.store.Add(context.Background(), "g", "100"))
	h.run("maxage soon")
	assert.Equal(t, []string{"💩"}, h.responder.reactions)
	assert.Equal(t, `Converting to "int" failed for parameter "ageMinutes".`, h.responder.replies[0])
	assert.Contains(t, h.responder.replies[1], "@janitor maxage [ageMinutes]")
}

func TestSweepNow(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.store.Add(context.Background(), "g", "100"))
	_, err := h.store.SetRetention(context.Background(), "100", 30)
	require.NoError(t, err)

	h.run("sweepnow")

	require.Len(t, h.sweeper.jobs, 1)
	job := h.sweeper.jobs[0]
	assert.Equal(t, "general", job.Channel.Name)
	assert.Equal(t, 30*time.Minute, job.Retention)
	assert.False(t, job.IgnoreAge)
	assert.Equal(t, "manual", job.Trigger)
	assert.Equal(t, []string{"✅"}, h.responder.reactions)
	assert.Equal(t, 1, h.responder.typing)
	assert.Equal(t, 1, h.responder.stopped)
	assert.Empty(t, h.confirmer.requests)
}

func TestSweepNow_IgnoreAge(t *testing.T) {
	tests := []struct {
		name          string
		outcome       confirm.Outcome
		err           error
		wantSweep     bool
		wantReactions []string
		wantReplies   int
	}{
		{"approved", confirm.Approved, nil, true, nil, 0},
		{"denied", confirm.Denied, nil, false, []string{"⏹"}, 0},
		{"timed out", confirm.TimedOut, nil, false, []string{"💩"}, 0},
		{"prompt failed", confirm.TimedOut, errors.New("cannot send"), false, []string{"💩"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			require.NoError(t, h.store.Add(context.Background(), "g", "100"))
			h.confirmer.outcome = tt.outcome
			h.confirmer.err = tt.err

			h.run("sweepnow yes")

			require.Len(t, h.confirmer.requests, 1)
			req := h.confirmer.requests[0]
			assert.Equal(t, "admin", req.RequesterID)
			assert.Equal(t, "cmd", req.ReplyToID)
			assert.Contains(t, req.Text, "**all unpinned messages** in <#100>")

			if tt.wantSweep {
				require.Len(t, h.sweeper.jobs, 1)
				assert.True(t, h.sweeper.jobs[0].IgnoreAge)
			} else {
				assert.Empty(t, h.sweeper.jobs)
			}
			assert.Equal(t, tt.wantReactions, h.responder.reactions)
			assert.Len(t, h.responder.replies, tt.wantReplies)
		})
	}
}

func TestSweepNow_BoolParsing(t *testing.T) {
	for _, arg := range []string{"false", "no", "0", "off", "N", "Disable"} {
		h := newHarness()
		require.NoError(t, h.store.Add(context.Background(), "g", "100"))
		h.run("sweepnow " + arg)
		assert.Empty(t, h.confirmer.requests, arg)
		assert.Len(t, h.sweeper.jobs, 1, arg)
	}

	h := newHarness()
	require.NoError(t, h.store.Add(context.Background(), "g", "100"))
	h.run("sweepnow maybe")
	assert.Empty(t, h.sweeper.jobs)
	assert.Equal(t, "maybe is not a recognised boolean option", h.responder.replies[0])
}

func TestSweepNow_NotEnabled(t *testing.T) {
	h := newHarness()
	h.run("sweepnow true")
	assert.Empty(t, h.confirmer.requests)
	assert.Empty(t, h.sweeper.jobs)
	assert.Equal(t, []string{"Sweeping is not enabled for <#100>"}, h.responder.replies)
}

func TestSweepNow_InternalError(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.store.Add(context.Background(), "g", "100"))
	h.sweeper.err = errors.New("HTTP 500: internal server error, token=secret")

	h.run("sweepnow")

	assert.Equal(t, []string{"💩"}, h.responder.reactions)
	assert.Equal(t, []string{"Oopsie poopsie! I had a stroke trying to process that"}, h.responder.replies)
}

func TestPermissionCheckedBeforeSideEffects(t *testing.T) {
	for _, text := range []string{"channels add 100", "channels list", "maxage 10", "sweepnow true"} {
		t.Run(text, func(t *testing.T) {
			h := newHarness()
			h.runAs("member", text)

			assert.Equal(t, []string{"💩"}, h.responder.reactions)
			assert.Equal(t, []string{"You are missing Administrator permission(s) to run this command."}, h.responder.replies)
			assert.Zero(t, h.store.count())
			assert.Empty(t, h.confirmer.requests)
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness()
	h.runAs("member", "dance")

	assert.Equal(t, []string{"💩"}, h.responder.reactions)
	require.Len(t, h.responder.replies, 2)
	assert.Equal(t, `Command "dance" is not found`, h.responder.replies[0])
	assert.Contains(t, h.responder.replies[1], "Deletes old messages from certain channels.")

	err := h.handler.Execute(context.Background(), Invocation{Text: "dance"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestHelp(t *testing.T) {
	h := newHarness()

	h.runAs("member", "help")
	h.runAs("member", "")
	h.runAs("member", "help channels add")

	require.Len(t, h.responder.replies, 3)
	assert.Contains(t, h.responder.replies[0], "sweepnow")
	assert.Equal(t, h.responder.replies[0], h.responder.replies[1])
	assert.Contains(t, h.responder.replies[2], "@janitor channels add <channel>")
	assert.Contains(t, h.responder.replies[2], "Add a channel to be swept")
	assert.Empty(t, h.responder.reactions)

	h.runAs("member", "help nothing")
	assert.Equal(t, `No command called "nothing" found.`, h.responder.replies[3])
}

func TestAdminCheckFailureIsInternal(t *testing.T) {
	h := newHarness()
	h.directory.adminErr = errors.New("member lookup failed")

	h.run("maxage")
	assert.Equal(t, []string{"Oopsie poopsie! I had a stroke trying to process that"}, h.responder.replies)
}
