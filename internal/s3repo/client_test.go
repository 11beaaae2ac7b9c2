package s3repo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_DownloadLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		limit     int64
		wantLimit int64
	}{
		{name: "zero selects the default", limit: 0, wantLimit: DefaultDownloadLimit},
		{name: "explicit limit is kept", limit: 1 << 30, wantLimit: 1 << 30},
		{name: "values above the hard limit are clamped", limit: 50 << 40, wantLimit: HardDownloadLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, err := NewClient(Config{
				AccessKeyID:     "key",
				SecretAccessKey: "secret",
				DownloadLimit:   tt.limit,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, client.downloadLimit)
		})
	}
}

func TestQuotaError(t *testing.T) {
	t.Parallel()

	err := error(&QuotaError{RequestedBytes: 2 << 40, LimitBytes: 1 << 40})
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	var quota *QuotaError
	require.ErrorAs(t, err, &quota)
	assert.Equal(t, int64(2<<40), quota.RequestedBytes)
	assert.Equal(t, int64(1<<40), quota.LimitBytes)
	assert.Contains(t, err.Error(), "quota")

	assert.False(t, errors.Is(errors.New("other"), ErrQuotaExceeded))
}
