package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"group-lead-scraper-go/internal/models"
)

// Notifier announces relevant leads to downstream consumers
type Notifier interface {
	NotifyLeads(ctx context.Context, groupURL string, results []models.Classification) (int, error)
	Close()
}

// Lead is the message published for every relevant classification
type Lead struct {
	PostNativeID      string    `json:"post_native_id"`
	AuthorName        string    `json:"author_name"`
	RelevantIntention string    `json:"relevant_intention"`
	Category          string    `json:"category"`
	Content           string    `json:"content"`
	GroupURL          string    `json:"group_url"`
	ClassifiedAt      time.Time `json:"classified_at"`
}

type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSNotifier publishes leads as JSON with trace context in the headers
type NATSNotifier struct {
	conn    msgPublisher
	subject string
	close   func()
	now     func() time.Time
}

// Connect dials the NATS server at url
func Connect(url, subject string) (*NATSNotifier, error) {
	nc, err := nats.Connect(url,
		nats.Name("group-lead-scraper"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logrus.Warnf("NATS disconnected: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	logrus.Infof("Connected to NATS at %s, publishing leads to %s", url, subject)
	n := newNATSNotifier(nc, subject)
	n.close = nc.Close
	return n, nil
}

func newNATSNotifier(conn msgPublisher, subject string) *NATSNotifier {
	return &NATSNotifier{conn: conn, subject: subject, close: func() {}, now: time.Now}
}

// NotifyLeads publishes every relevant result and returns how many were sent.
// It stops at the first publish error.
func (n *NATSNotifier) NotifyLeads(ctx context.Context, groupURL string, results []models.Classification) (int, error) {
	sent := 0
	for _, c := range results {
		if !c.IsRelevant() {
			continue
		}
		lead := Lead{
			PostNativeID:      c.PostNativeID,
			AuthorName:        c.AuthorName,
			RelevantIntention: c.RelevantIntention,
			Category:          c.Category,
			Content:           c.Content,
			GroupURL:          groupURL,
			ClassifiedAt:      n.now().UTC(),
		}
		if err := n.publish(ctx, lead); err != nil {
			return sent, fmt.Errorf("failed to publish lead %s: %w", c.PostNativeID, err)
		}
		sent++
	}
	return sent, nil
}

func (n *NATSNotifier) publish(ctx context.Context, lead Lead) error {
	data, err := json.Marshal(lead)
	if err != nil {
		return err
	}
	msg := &nats.Msg{
		Subject: n.subject,
		Data:    data,
	}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	return n.conn.PublishMsg(msg)
}

func (n *NATSNotifier) Close() {
	n.close()
}

// headerCarrier adapts nats.Msg headers for OTel TextMapCarrier
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// Nop discards all leads
type Nop struct{}

func (Nop) NotifyLeads(ctx context.Context, groupURL string, results []models.Classification) (int, error) {
	return 0, nil
}

func (Nop) Close() {}
