package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"zenstream/internal/ledger"
	"zenstream/internal/model"
	"zenstream/internal/timer"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: focus", model.ErrInvalidConfig), http.StatusBadRequest, "invalid_config"},
		{timer.ErrAlreadyRunning, http.StatusConflict, "timer_running"},
		{fmt.Errorf("%w: dragon", ledger.ErrUnknownItem), http.StatusNotFound, "unknown_item"},
		{ledger.ErrAlreadyOwned, http.StatusConflict, "already_owned"},
		{ledger.ErrInsufficientBalance, http.StatusConflict, "insufficient_balance"},
		{fmt.Errorf("disk full"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range tests {
		apiErr := FromDomain(tc.err, "failed")
		assert.Equal(t, tc.status, apiErr.Status, tc.err.Error())
		assert.Equal(t, tc.code, apiErr.Code, tc.err.Error())
	}

	assert.Nil(t, FromDomain(nil, "failed"))
	assert.Equal(t, "failed", FromDomain(fmt.Errorf("boom"), "failed").Message)
}
