package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportKey(t *testing.T) {
	when := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		prefix   string
		business string
		want     string
	}{
		{name: "plain name", prefix: "reports", business: "Corner Shop", want: "reports/corner-shop-2024-01-15.md"},
		{name: "no prefix", prefix: "", business: "Corner Shop", want: "corner-shop-2024-01-15.md"},
		{name: "punctuation and repeats collapsed", prefix: "reports", business: "  Bob's  Store -- East ", want: "reports/bobs-store-east-2024-01-15.md"},
		{name: "empty name falls back", prefix: "reports", business: "", want: "reports/report-2024-01-15.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReportKey(tt.prefix, tt.business, when))
		})
	}
}

func TestPublishReport(t *testing.T) {
	store := newFakeStore(map[string][]byte{})

	err := PublishReport(context.Background(), store, "reports/corner-shop-2024-01-15.md", "# Weekly Business Report")
	require.NoError(t, err)

	assert.Equal(t, []byte("# Weekly Business Report"), store.objects["reports/corner-shop-2024-01-15.md"])
}

func TestPublishReportPropagatesUploadError(t *testing.T) {
	store := newFakeStore(map[string][]byte{})
	store.failUploads = true

	err := PublishReport(context.Background(), store, "reports/r.md", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reports/r.md")
}
