package alerting

import (
	"context"

	"github.com/atelierhq/pulse/pkg/cache"
	"github.com/atelierhq/pulse/pkg/models"
)

// FeedNotifier mirrors raised alerts into the cache's recent-alerts
// feed, scored by occurrence time. Dashboards connecting to the live
// stream replay this feed as backlog. The store stays authoritative;
// losing the feed loses only the replay.
type FeedNotifier struct {
	cache cache.Cache
}

func NewFeedNotifier(c cache.Cache) *FeedNotifier {
	return &FeedNotifier{cache: c}
}

func (n *FeedNotifier) Notify(ctx context.Context, alert *models.Alert) error {
	return n.cache.PushRecent(ctx, cache.AlertFeed, alert, alert.LastOccurrence)
}
