package webhookpubsub

import (
	"net/url"

	"github.com/google/uuid"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
)

var topics = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, t := range ports.Topics() {
		m[t] = struct{}{}
	}
	return m
}()

// Webhook is an endpoint notified with a POST request for every message
// published on its topic. A non empty secret makes every request carry a
// bearer JWT signed with it.
type Webhook struct {
	ID       string
	Event    string `badgerhold:"index"`
	Endpoint string
	Secret   string
}

func NewWebhook(topic, endpoint, secret string) (*Webhook, error) {
	if _, ok := topics[topic]; !ok {
		return nil, ErrInvalidTopic
	}
	u, err := url.ParseRequestURI(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidEndpoint
	}
	return &Webhook{
		ID:       uuid.New().String(),
		Event:    topic,
		Endpoint: endpoint,
		Secret:   secret,
	}, nil
}

func (h *Webhook) Topic() string {
	return h.Event
}

func (h *Webhook) Id() string {
	return h.ID
}

func (h *Webhook) NotifyAt() string {
	return h.Endpoint
}

func (h *Webhook) IsSecured() bool {
	return len(h.Secret) > 0
}
