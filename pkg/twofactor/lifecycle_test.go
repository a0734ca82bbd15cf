package twofactor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

func TestTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from    twofactor.Status
		event   twofactor.Event
		want    twofactor.Status
		allowed bool
	}{
		{twofactor.StatusUnset, twofactor.EventEnable, twofactor.StatusPending, true},
		{twofactor.StatusUnset, twofactor.EventConfirm, twofactor.StatusUnset, false},
		{twofactor.StatusUnset, twofactor.EventDisable, twofactor.StatusUnset, true},
		{twofactor.StatusUnset, twofactor.EventRotate, twofactor.StatusUnset, false},
		{twofactor.StatusPending, twofactor.EventEnable, twofactor.StatusPending, true},
		{twofactor.StatusPending, twofactor.EventConfirm, twofactor.StatusActive, true},
		{twofactor.StatusPending, twofactor.EventDisable, twofactor.StatusUnset, true},
		{twofactor.StatusPending, twofactor.EventRotate, twofactor.StatusPending, false},
		{twofactor.StatusActive, twofactor.EventEnable, twofactor.StatusPending, true},
		{twofactor.StatusActive, twofactor.EventConfirm, twofactor.StatusActive, true},
		{twofactor.StatusActive, twofactor.EventDisable, twofactor.StatusUnset, true},
		{twofactor.StatusActive, twofactor.EventRotate, twofactor.StatusActive, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.event), func(t *testing.T) {
			t.Parallel()

			got, err := twofactor.Transition(tt.from, tt.event)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.allowed, twofactor.CanTransition(tt.from, tt.event))
			if tt.allowed {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, twofactor.ErrInvalidTransition)

			var nt *twofactor.ErrNoTransition
			require.True(t, errors.As(err, &nt))
			assert.Equal(t, tt.from, nt.From)
			assert.Equal(t, tt.event, nt.Event)
		})
	}
}
