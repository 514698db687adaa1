package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic-billing-core/pkg/apperror"
	"clinic-billing-core/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = errors.New("sentinel")

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, response.StatusFor(apperror.KindNotFound))
	assert.Equal(t, http.StatusConflict, response.StatusFor(apperror.KindConflict))
	assert.Equal(t, http.StatusConflict, response.StatusFor(apperror.KindCapacityExceeded))
	assert.Equal(t, http.StatusUnprocessableEntity, response.StatusFor(apperror.KindInvalidTransition))
	assert.Equal(t, http.StatusBadRequest, response.StatusFor(apperror.KindValidation))
	assert.Equal(t, http.StatusInternalServerError, response.StatusFor(apperror.Kind("OTHER")))
}

func TestAppError_Typed(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("booking: %w", apperror.CapacityExceeded(errSentinel, "doctor is full", map[string]interface{}{"capacity": 20}))

	response.AppError(rec, err, "Failed to book appointment")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Error   struct {
			Kind    string                 `json:"kind"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "doctor is full", body.Message)
	assert.Equal(t, "CAPACITY_EXCEEDED", body.Error.Kind)
	assert.EqualValues(t, 20, body.Error.Details["capacity"])
}

func TestAppError_Untyped(t *testing.T) {
	rec := httptest.NewRecorder()

	response.AppError(rec, errors.New("pq: connection refused"), "Failed to get bill")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Failed to get bill", body.Message)
	assert.Nil(t, body.Error)
}
