package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clientmax/agency-crm/internal/core/domain"
)

// Markers expire after two days: long enough to cover the whole calendar day
// they guard plus clock skew, short enough that keys never pile up.
const dedupTTL = 48 * time.Hour

// AlertDedup provides the day-scoped threshold-alert marker backed by Redis.
// Key format: alert:<type>:<subject>:<yyyy-mm-dd>
type AlertDedup struct {
	client *redis.Client
}

// NewAlertDedup creates an AlertDedup wrapping the given Redis client.
func NewAlertDedup(client *redis.Client) *AlertDedup {
	return &AlertDedup{client: client}
}

// SeenToday reports whether an alert of this type for this subject has
// already fired on the given calendar day.
func (d *AlertDedup) SeenToday(ctx context.Context, kind domain.NotificationType, subject string, day time.Time) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(kind, subject, day)).Result()
	if err != nil {
		return false, fmt.Errorf("alert dedup check: %w", err)
	}
	return n > 0, nil
}

// MarkToday records that the alert fired on the given calendar day.
func (d *AlertDedup) MarkToday(ctx context.Context, kind domain.NotificationType, subject string, day time.Time) error {
	return d.client.Set(ctx, d.key(kind, subject, day), "1", dedupTTL).Err()
}

func (d *AlertDedup) key(kind domain.NotificationType, subject string, day time.Time) string {
	return fmt.Sprintf("alert:%s:%s:%s", kind, subject, day.UTC().Format("2006-01-02"))
}
