package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// ReportKey builds the object key a rendered report is published under:
// <prefix>/<business-slug>-<date>.md.
func ReportKey(prefix, businessName string, when time.Time) string {
	slug := slugify(businessName)
	if slug == "" {
		slug = "report"
	}
	return path.Join(prefix, fmt.Sprintf("%s-%s.md", slug, when.Format("2006-01-02")))
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == ' ' || r == '-' || r == '_':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// PublishReport uploads a rendered report to the bucket under key.
func PublishReport(ctx context.Context, store ObjectStorage, key, report string) error {
	if err := store.UploadObject(ctx, key, []byte(report)); err != nil {
		return fmt.Errorf("publish report %s: %w", key, err)
	}
	return nil
}
