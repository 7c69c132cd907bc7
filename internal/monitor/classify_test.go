package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]interface{}
		want   Class
	}{
		{"ok", 200, map[string]interface{}{"orderId": "x"}, ClassOK},
		{"gone is deprecated", 410, nil, ClassDeprecated},
		{"too many requests", 429, nil, ClassTransient},
		{"service unavailable", 503, nil, ClassTransient},
		{"server error", 500, nil, ClassOutage},
		{"bad gateway", 502, nil, ClassOutage},
		{"bad request", 400, nil, ClassClientError},
		{"unprocessable", 422, nil, ClassClientError},
		{"deprecated flag overrides ok", 200, map[string]interface{}{"deprecated": true}, ClassDeprecated},
		{"deprecation warning overrides ok", 200, map[string]interface{}{"warning": "deprecated"}, ClassDeprecated},
		{"redirect treated as ok", 301, nil, ClassOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.status, tt.body))
		})
	}
}

func TestClassRetryable(t *testing.T) {
	assert.True(t, ClassTransient.Retryable())
	assert.True(t, ClassOutage.Retryable())
	assert.False(t, ClassOK.Retryable())
	assert.False(t, ClassDeprecated.Retryable())
	assert.False(t, ClassClientError.Retryable())
}

func TestNormalizeErrorShapes(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        map[string]interface{}
		wantError   string
		wantMessage string
	}{
		{
			name:        "flat error with message",
			status:      400,
			body:        map[string]interface{}{"error": "INVALID_REQUEST", "message": "bad id"},
			wantError:   "INVALID_REQUEST",
			wantMessage: "bad id",
		},
		{
			name:        "error_code with detail",
			status:      400,
			body:        map[string]interface{}{"error_code": "E42", "detail": "missing field"},
			wantError:   "E42",
			wantMessage: "missing field",
		},
		{
			name:   "errors list takes first code",
			status: 422,
			body: map[string]interface{}{
				"errors": []interface{}{
					map[string]interface{}{"code": "E1001", "detail": "invalid amount"},
				},
			},
			wantError:   "E1001",
			wantMessage: "invalid amount",
		},
		{
			name:   "errors list aggregates messages",
			status: 422,
			body: map[string]interface{}{
				"errors": []interface{}{
					map[string]interface{}{"code": "E1", "detail": "first"},
					map[string]interface{}{"code": "E2", "message": "second"},
				},
			},
			wantError:   "E1",
			wantMessage: "first; second",
		},
		{
			name:        "nil body falls back to http code",
			status:      500,
			body:        nil,
			wantError:   "HTTP_500",
			wantMessage: "An error occurred",
		},
		{
			name:        "unknown shape falls back to http code",
			status:      500,
			body:        map[string]interface{}{"whatever": 1},
			wantError:   "HTTP_500",
			wantMessage: "map[whatever:1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NormalizeError(tt.status, tt.body)
			assert.Equal(t, tt.wantError, info.Error)
			assert.Equal(t, tt.wantMessage, info.Message)
		})
	}
}

func TestNormalizeErrorRetryHints(t *testing.T) {
	info := NormalizeError(503, map[string]interface{}{
		"error":     "SERVICE_UNAVAILABLE",
		"message":   "try later",
		"retryable": true,
	})
	assert.Equal(t, "try later; retry suggested", info.Message)

	info = NormalizeError(503, map[string]interface{}{
		"errors": []interface{}{
			map[string]interface{}{
				"code":     "SERVICE_UNAVAILABLE",
				"detail":   "Database temporarily unavailable",
				"metadata": map[string]interface{}{"retry_after": 60.0},
			},
		},
	})
	assert.Equal(t, "SERVICE_UNAVAILABLE", info.Error)
	assert.Equal(t, "Database temporarily unavailable; retry after 60s", info.Message)
}
