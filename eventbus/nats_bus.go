package eventbus

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// Bus publishes job lifecycle events on a NATS core subject. A nil *Bus is
// valid and publishes nothing, so callers never guard their publish sites.
type Bus struct {
	nc      *nats.Conn
	subject string
}

type Config struct {
	URL     string
	Subject string
}

const defaultSubject = "leadscout.events.jobs"

func New(cfg Config) (*Bus, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("leadscout-eventbus"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	subject := cfg.Subject
	if subject == "" {
		subject = defaultSubject
	}
	return &Bus{nc: nc, subject: subject}, nil
}

// PublishJobEvent fills in envelope defaults and publishes the event.
// Failures are logged, not returned: eventing is advisory and must never
// fail a scrape.
func (b *Bus) PublishJobEvent(ctx context.Context, evt JobEvent) {
	if b == nil || b.nc == nil {
		return
	}
	if evt.EventID == "" {
		evt.EventID = NewEventID()
	}
	if evt.Source == "" {
		evt.Source = "leadscout"
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	if err := b.nc.Publish(b.subject, data); err != nil {
		log.Printf("⚠️ Event publish failed for job %s: %v", evt.JobID, err)
	}
}

// Subscribe delivers job events to the handler until the context ends.
func (b *Bus) Subscribe(ctx context.Context, handler func(JobEvent)) (*nats.Subscription, error) {
	sub, err := b.nc.Subscribe(b.subject, func(msg *nats.Msg) {
		var evt JobEvent
		if err := json.Unmarshal(msg.Data, &evt); err == nil {
			handler(evt)
		}
	})
	if err != nil {
		return nil, err
	}
	go func() {
		<-ctx.Done()
		_ = sub.Drain()
	}()
	return sub, nil
}

// Close drains the underlying connection.
func (b *Bus) Close() {
	if b != nil && b.nc != nil {
		b.nc.Close()
	}
}
