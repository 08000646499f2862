package basecamp

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{StatusCode: 404, Method: "GET", Path: "/999/x.json", Body: `{"error":"Not found"}`, kind: ErrNotFound}
	assert.Equal(t, `GET /999/x.json failed 404: {"error":"Not found"}`, err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrServerError))

	noBody := &APIError{StatusCode: 500, Method: "PUT", Path: "/y.json", kind: ErrServerError}
	assert.Equal(t, "PUT /y.json failed 500", noBody.Error())
}

func TestNewAPIError_LimitsBody(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusInternalServerError,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(strings.Repeat("a", maxErrorBody*2))),
	}

	apiErr := newAPIError(resp, http.MethodGet, "/p", time.Now())
	assert.Len(t, apiErr.Body, maxErrorBody)
	assert.Zero(t, apiErr.RetryAfter)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, time.October, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"empty", "", 0},
		{"seconds", "30", 30 * time.Second},
		{"negative", "-5", 0},
		{"http date", now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{"date in past", now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"garbage", "soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRetryAfter(tt.value, now))
		})
	}
}
