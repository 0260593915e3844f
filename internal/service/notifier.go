package service

import (
	"context"
	"errors"

	"github.com/ds124wfegd/college-events/internal/entity"
)

// Publisher delivers domain notifications to a side channel (broker, cache, bot).
type Publisher interface {
	Publish(ctx context.Context, n *entity.Notification) error
}

// MultiPublisher fans a notification out to every publisher and joins the failures.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, n *entity.Notification) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *entity.Notification) error { return nil }

// ReportCache stores computed reports. Get reports whether the key was present.
// Generation changes after every committed mutation; reports are stored under
// the generation read before their snapshot, so a result computed from data
// that has since changed is never served.
type ReportCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

type NopCache struct{}

func (NopCache) Generation(context.Context) (int64, error)              { return 0, nil }
func (NopCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (NopCache) Set(context.Context, string, interface{}) error         { return nil }
