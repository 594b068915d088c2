package discord

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/aatumaykin/janitor/internal/channels"
)

// codeUnknownMessage is returned when deleting a message that is already gone.
const codeUnknownMessage = 10008

// classify converts discordgo REST failures into *channels.RESTErrorDetails
// so that retry and logging can inspect them. Other errors are wrapped.
func classify(op, channelID string, err error) error {
	if err == nil {
		return nil
	}

	var rl *discordgo.RateLimitError
	if errors.As(err, &rl) && rl.RateLimit != nil && rl.TooManyRequests != nil {
		return &channels.RESTErrorDetails{
			Operation:  op,
			StatusCode: http.StatusTooManyRequests,
			Message:    rl.TooManyRequests.Message,
			Retry:      rl.TooManyRequests.RetryAfter,
			ChannelID:  channelID,
			Err:        err,
		}
	}

	var rest *discordgo.RESTError
	if errors.As(err, &rest) {
		d := &channels.RESTErrorDetails{Operation: op, ChannelID: channelID, Err: err}
		if rest.Response != nil {
			d.StatusCode = rest.Response.StatusCode
			d.Retry = parseRetryAfter(rest.Response.Header.Get("Retry-After"))
		}
		if rest.Message != nil {
			d.Code = rest.Message.Code
			d.Message = rest.Message.Message
		}
		return d
	}

	return fmt.Errorf("%s: %w", op, err)
}

// isUnknownMessage reports whether err says the message no longer exists.
func isUnknownMessage(err error) bool {
	var d *channels.RESTErrorDetails
	return errors.As(err, &d) && (d.Code == codeUnknownMessage || d.StatusCode == http.StatusNotFound)
}

// parseRetryAfter reads the Retry-After header, given in (fractional) seconds.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
