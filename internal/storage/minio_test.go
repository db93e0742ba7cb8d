package storage

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantNotFound  bool
		wantRetryable bool
	}{
		{"no such key", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}, true, false},
		{"plain 404", minio.ErrorResponse{StatusCode: http.StatusNotFound}, true, false},
		{"server error", minio.ErrorResponse{Code: "InternalError", StatusCode: http.StatusServiceUnavailable}, false, true},
		{"throttled", minio.ErrorResponse{Code: "SlowDown", StatusCode: http.StatusTooManyRequests}, false, true},
		{"network", errors.New("dial tcp: connection refused"), false, true},
		{"forbidden", minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}, false, false},
		{"canceled", context.Canceled, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("get", "records/x/parsed.json", tt.err)
			assert.Error(t, err)
			assert.Equal(t, tt.wantNotFound, errors.Is(err, ErrNotFound))
			assert.Equal(t, tt.wantRetryable, IsRetryable(err))
		})
	}
}
