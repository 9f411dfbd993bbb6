package response

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dnmerge/pkg/errors"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]any{"status": "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode(t, rec)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"status": "ok"}, resp.Data)
}

func TestClassify(t *testing.T) {
	missing := errors.NewMissingKeyColumnError("secondary", "DN NUMBER (SAP)", nil)
	unreadable := errors.NewUnreadableInputError("primary", "csv", fmt.Errorf("line 3: bad quote"))

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing key", missing, http.StatusUnprocessableEntity, CodeMissingKeyColumn},
		{"unreadable", unreadable, http.StatusBadRequest, CodeUnreadableInput},
		{"joined prefers missing key", stderrors.Join(unreadable, missing), http.StatusUnprocessableEntity, CodeMissingKeyColumn},
		{"validation", errors.NewValidationError("sheet", "x", "bad"), http.StatusBadRequest, CodeBadRequest},
		{"not found", errors.NewNotFoundError("result", "abc"), http.StatusNotFound, CodeNotFound},
		{"canceled", errors.WrapCanceled("run", context.Canceled), http.StatusRequestTimeout, CodeCanceled},
		{"run error", errors.NewRunError("r", "reconcile", fmt.Errorf("panic: boom")), http.StatusInternalServerError, CodeInternal},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := Classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestErrorFromType(t *testing.T) {
	t.Run("missing key column carries the cause", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ErrorFromType(rec, errors.NewMissingKeyColumnError("secondary", "DN NUMBER (SAP)", []string{"DN"}))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		resp := decode(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, CodeMissingKeyColumn, resp.Error.Code)
		assert.Contains(t, resp.Error.Details, "secondary")
		assert.Nil(t, resp.Data)
	})

	t.Run("not found names the resource", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ErrorFromType(rec, fmt.Errorf("%w (results expire after 1h0m0s)", errors.NewNotFoundError("result", "abc")))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		resp := decode(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, CodeNotFound, resp.Error.Code)
		assert.Equal(t, "result with ID abc not found (results expire after 1h0m0s)", resp.Error.Details)
	})

	t.Run("internal errors hide the cause", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ErrorFromType(rec, fmt.Errorf("secret detail"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decode(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, CodeInternal, resp.Error.Code)
		assert.NotContains(t, resp.Error.Message+resp.Error.Details, "secret")
	})
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "bad", "") }, http.StatusBadRequest, CodeBadRequest},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "no", "") }, http.StatusUnauthorized, CodeUnauthorized},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "gone", "") }, http.StatusNotFound, CodeNotFound},
		{"method", func(w http.ResponseWriter) { MethodNotAllowed(w, http.MethodPut) }, http.StatusMethodNotAllowed, CodeMethodNotAllowed},
		{"too large", func(w http.ResponseWriter) { TooLarge(w, "64MB") }, http.StatusRequestEntityTooLarge, CodeTooLarge},
		{"rate limited", func(w http.ResponseWriter) { RateLimited(w, "slow down") }, http.StatusTooManyRequests, CodeRateLimited},
		{"unavailable", func(w http.ResponseWriter) { ServiceUnavailable(w, "down") }, http.StatusServiceUnavailable, CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
