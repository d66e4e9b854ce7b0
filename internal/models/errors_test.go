package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("xref table broken")
	err := NewOpError(ErrCorruptInput, "merge", "b.pdf", "", cause)

	assert.ErrorIs(t, err, ErrCorruptInput)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrOperationFailed)
	assert.Equal(t, "merge: b.pdf: corrupt input: xref table broken", err.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"op error", NewOpError(ErrInvalidRange, "split", "", "", nil), ErrInvalidRange},
		{"wrapped op error", fmt.Errorf("outer: %w", NewOpError(ErrBusy, "rotate", "", "", nil)), ErrBusy},
		{"bare sentinel", fmt.Errorf("x: %w", ErrFileTooLarge), ErrFileTooLarge},
		{"foreign error", errors.New("boom"), ErrOperationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestNotification(t *testing.T) {
	assert.Equal(t, "", Notification(nil))
	assert.Equal(t,
		"Invalid page ranges. Use format like: 1-3, 5, 7-9",
		Notification(NewOpError(ErrInvalidRange, "split", "", "", nil)))
	assert.Equal(t,
		"scan.pdf: cannot be opened",
		Notification(NewOpError(ErrCorruptInput, "merge", "scan.pdf", "cannot be opened", nil)))
	assert.Equal(t,
		"The operation failed. Please try again.",
		Notification(errors.New("anything")))
}
