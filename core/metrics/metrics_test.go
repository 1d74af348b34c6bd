package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/hive/core/registry"
)

type countingRecorder struct {
	resolutions int
	variants    map[string]int
	err         error
}

func (c *countingRecorder) RecordResolution(registry.Event) error {
	c.resolutions++
	return c.err
}

func (c *countingRecorder) RecordVariants(family string, n int) error {
	if c.variants == nil {
		c.variants = map[string]int{}
	}
	c.variants[family] = n
	return c.err
}

func TestMultiRecorder(t *testing.T) {
	a := &countingRecorder{}
	b := &countingRecorder{err: errors.New("boom")}
	c := &countingRecorder{}
	m := NewMultiRecorder(a, nil, b, c)
	assert.Len(t, m.Recorders, 3)

	assert.EqualError(t, m.RecordResolution(registry.Event{Family: "env"}), "boom")
	assert.Equal(t, 1, a.resolutions)
	assert.Equal(t, 0, c.resolutions)

	assert.Error(t, m.RecordVariants("env", 2))
	assert.Equal(t, 2, a.variants["env"])

	var nop Recorder = NopRecorder{}
	assert.NoError(t, nop.RecordResolution(registry.Event{}))
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("x: %w", registry.ErrUnknownFamily), "unknown_family"},
		{fmt.Errorf("x: %w", registry.ErrUnknownVariant), "unknown_variant"},
		{registry.ErrMalformedFragment, "malformed"},
		{fmt.Errorf("--a: %w", registry.ErrInvalidOverride), "invalid_override"},
		{registry.ErrUnexpectedArgument, "unexpected_argument"},
		{errors.New("ctor failed"), "constructor_error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}

func TestEventOutcome(t *testing.T) {
	cause := fmt.Errorf("x: %w", registry.ErrUnknownVariant)
	assert.Equal(t, "ok", EventOutcome(registry.Event{}))
	assert.Equal(t, "unknown_variant", EventOutcome(registry.Event{Err: cause}))
	assert.Equal(t, "nested_error", EventOutcome(registry.Event{Err: cause, Nested: true}))
	assert.Equal(t, "ok", EventOutcome(registry.Event{Nested: true}))
}
