package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IdoCohen138/league-predictions/internal/usecase"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantCode   int
		wantStatus string
	}{
		{name: "invalid input", err: fmt.Errorf("%w: bad", usecase.ErrInvalidInput), wantCode: http.StatusBadRequest, wantStatus: "INVALID_ARGUMENT"},
		{name: "not found", err: fmt.Errorf("%w: missing", usecase.ErrNotFound), wantCode: http.StatusNotFound, wantStatus: "NOT_FOUND"},
		{name: "invalid state", err: fmt.Errorf("%w: locked", usecase.ErrInvalidState), wantCode: http.StatusConflict, wantStatus: "FAILED_PRECONDITION"},
		{name: "unauthorized", err: fmt.Errorf("%w: nope", usecase.ErrUnauthorized), wantCode: http.StatusUnauthorized, wantStatus: "UNAUTHENTICATED"},
		{name: "dependency unavailable", err: fmt.Errorf("%w: queue down", usecase.ErrDependencyUnavailable), wantCode: http.StatusServiceUnavailable, wantStatus: "UNAVAILABLE"},
		{name: "unknown", err: fmt.Errorf("boom"), wantCode: http.StatusInternalServerError, wantStatus: "INTERNAL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mapped := mapError(context.Background(), tc.err)
			require.Equal(t, tc.wantCode, mapped.HTTPStatus)
			require.Equal(t, tc.wantStatus, mapped.Status)
		})
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: round 3 not found", usecase.ErrNotFound))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), `"apiVersion":"2.0"`)
	require.Contains(t, rec.Body.String(), `"status":"NOT_FOUND"`)
	require.Contains(t, rec.Body.String(), `"domain":"league-predictions"`)
}

func TestWriteSuccessEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]int{"value": 7})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"apiVersion":"2.0"`)
	require.Contains(t, rec.Body.String(), `"value":7`)
}
