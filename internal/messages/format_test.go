package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMaxAge(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0 minutes"},
		{1, "1 minutes"},
		{5, "5 minutes"},
		{60, "1 hours"},
		{90, "1 hours, 30 minutes"},
		{24 * 60, "1 days"},
		{24*60 + 1, "1 days, 1 minutes"},
		{2*24*60 + 3*60 + 4, "2 days, 3 hours, 4 minutes"},
		{-10, "0 minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMaxAge(tt.minutes))
		})
	}
}

func TestFormatChannelList(t *testing.T) {
	assert.Equal(t, "I'm not configured to sweep any channels in `Guild`", FormatChannelList("Guild", nil))
	assert.Equal(t,
		"In `Guild` I am configured to sweep:\n\t<#1>\n\t<#2>",
		FormatChannelList("Guild", []string{"1", "2"}))
}

func TestFormatValidationErrors(t *testing.T) {
	assert.Empty(t, FormatValidationErrors(nil))

	out := FormatValidationErrors([]error{errors.New("first"), errors.New("second")})
	assert.Contains(t, out, "1. first")
	assert.Contains(t, out, "2. second")
}
