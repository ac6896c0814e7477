package devto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeStrings(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    string
	}{
		{
			name:    "success",
			outcome: successOutcome("https://dev.to/alice/post-1"),
			want:    "Article published successfully! URL: https://dev.to/alice/post-1",
		},
		{
			name:    "success without url",
			outcome: successOutcome(""),
			want:    "Article published successfully! URL: ",
		},
		{
			name:    "config error",
			outcome: configErrorOutcome("DEVTO_API_KEY"),
			want:    "Error: DEVTO_API_KEY environment variable is not set. Please set it to publish articles.",
		},
		{
			name:    "api error",
			outcome: apiErrorOutcome(422, "Title can't be blank"),
			want:    "Failed to publish article. Status code: 422, Error: Title can't be blank",
		},
		{
			name:    "transport error",
			outcome: transportErrorOutcome(errors.New("dial tcp: connection refused")),
			want:    "An error occurred during the API request: dial tcp: connection refused",
		},
		{
			name:    "unexpected error",
			outcome: unexpectedErrorOutcome(errors.New("boom")),
			want:    "An unexpected error occurred: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outcome.String())
		})
	}
}
