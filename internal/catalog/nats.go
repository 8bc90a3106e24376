package catalog

import (
	"log/slog"

	"github.com/nats-io/nats.go"
)

// SubscribeChanges registers for push notifications of remote catalog
// changes. The payload granularity is unspecified, so any message on the
// subject is treated as "refresh everything"; the store's trigger channel
// coalesces bursts into at most one queued refresh.
//
// The returned subscription must be unsubscribed on teardown so a disposed
// store is not called back into.
func (s *Store) SubscribeChanges(nc *nats.Conn, subject string) (*nats.Subscription, error) {
	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		s.logger.Debug("catalog change notification", slog.String("subject", msg.Subject))
		s.TriggerRefresh()
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}
