package webhookpubsub

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/tdex-network/custody-daemon/pkg/circuitbreaker"
	"golang.org/x/sync/errgroup"
)

// DefaultRequestTimeout ...
const DefaultRequestTimeout = 10 * time.Second

// Config ...
type Config struct {
	// Datadir is where webhooks are persisted. Empty means in memory.
	Datadir        string
	RequestTimeout time.Duration
	Logger         badger.Logger
}

func (c Config) validate() error {
	if c.RequestTimeout < 0 {
		return ErrInvalidRequestTimeout
	}
	return nil
}

type service struct {
	store      *webhookStore
	httpClient *client
	cb         *gobreaker.CircuitBreaker
	now        func() time.Time
}

// NewService returns a PubSub delivering messages to webhooks with POST
// requests.
func NewService(cfg Config) (ports.PubSub, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}

	store, err := newWebhookStore(cfg.Datadir, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("opening webhook db: %w", err)
	}

	return &service{
		store:      store,
		httpClient: newHTTPClient(timeout),
		cb:         circuitbreaker.New("webhook"),
		now:        time.Now,
	}, nil
}

func (s *service) Subscribe(topic, endpoint, secret string) (string, error) {
	hook, err := NewWebhook(topic, endpoint, secret)
	if err != nil {
		return "", err
	}
	if err := s.store.add(hook); err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"id":       hook.ID,
		"topic":    topic,
		"endpoint": endpoint,
	}).Debug("webhook added")
	return hook.ID, nil
}

func (s *service) Unsubscribe(id string) error {
	return s.store.remove(id)
}

func (s *service) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	hooks, err := s.hooksForTopic(topic)
	if err != nil {
		log.WithError(err).Warn("failed to list webhooks")
		return nil
	}
	subs := make([]ports.Subscription, 0, len(hooks))
	for i := range hooks {
		subs = append(subs, &hooks[i])
	}
	return subs
}

// Publish makes a POST request to every webhook registered for the topic or
// for any topic. Requests run concurrently and the first error is returned.
func (s *service) Publish(topic string, message string) error {
	if _, ok := topics[topic]; !ok || topic == ports.AnyTopic {
		return ErrInvalidTopic
	}
	hooks, err := s.hooksForTopic(topic)
	if err != nil {
		return err
	}

	eg := &errgroup.Group{}
	for i := range hooks {
		hook := hooks[i]
		eg.Go(func() error { return s.doRequest(hook, topic, message) })
	}
	return eg.Wait()
}

func (s *service) Close() error {
	return s.store.close()
}

func (s *service) hooksForTopic(topic string) ([]Webhook, error) {
	hooks, err := s.store.findByTopic(topic)
	if err != nil {
		return nil, err
	}
	if topic == ports.AnyTopic {
		return hooks, nil
	}
	anyHooks, err := s.store.findByTopic(ports.AnyTopic)
	if err != nil {
		return nil, err
	}
	return append(hooks, anyHooks...), nil
}

func (s *service) doRequest(hook Webhook, topic, payload string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
			"X-Topic":      topic,
		}
		if hook.IsSecured() {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
				Subject:  topic,
				IssuedAt: s.now().Unix(),
			})
			tokenString, err := token.SignedString([]byte(hook.Secret))
			if err != nil {
				return nil, err
			}
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		status, resp, err := s.httpClient.post(hook.Endpoint, payload, headers)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, &DeliveryError{hook.Endpoint, status, resp}
		}
		return nil, nil
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"id":    hook.ID,
			"topic": topic,
		}).Warn("failed to deliver webhook")
	}
	return err
}
