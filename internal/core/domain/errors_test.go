package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ErrorKindNone},
		{"invalid configuration", ErrInvalidConfiguration, ErrorKindInvalidConfiguration},
		{"dimension mismatch", ErrDimensionMismatch, ErrorKindDimensionMismatch},
		{"upstream timeout", ErrUpstreamTimeout, ErrorKindUpstreamTimeout},
		{"context deadline", context.DeadlineExceeded, ErrorKindUpstreamTimeout},
		{"upstream unavailable", ErrUpstreamUnavailable, ErrorKindUpstreamUnavailable},
		{"ungrounded format", ErrUngroundedResponseFormat, ErrorKindUngroundedResponseFormat},
		{"unclassified", errors.New("boom"), ErrorKindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKindOfUnwrapsChains(t *testing.T) {
	wrapped := fmt.Errorf("grading answer: %w", fmt.Errorf("parse verdict: %w", ErrUngroundedResponseFormat))
	assert.Equal(t, ErrorKindUngroundedResponseFormat, KindOf(wrapped))
}
