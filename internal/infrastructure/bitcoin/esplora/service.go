package esplora

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/tdex-network/custody-daemon/pkg/btc"
	"github.com/tdex-network/custody-daemon/pkg/circuitbreaker"
	"go.uber.org/ratelimit"
)

const (
	// DefaultRequestTimeout ...
	DefaultRequestTimeout = 15 * time.Second
	// DefaultRequestsPerSecond is the default pace of the calls made to any
	// of the configured endpoints.
	DefaultRequestsPerSecond = 10
)

// Config holds the esplora endpoint of every supported network. Networks
// without an endpoint are rejected with ErrNetworkNotSupported.
type Config struct {
	URLs              map[btc.Network]string
	RequestsPerSecond int
	RequestTimeout    time.Duration
}

func (c Config) validate() error {
	if len(c.URLs) == 0 {
		return ErrMissingURL
	}
	for network, url := range c.URLs {
		if url == "" {
			return fmt.Errorf("%w for network %s", ErrMissingURL, network)
		}
	}
	if c.RequestsPerSecond < 0 {
		return ErrInvalidRequestsPerSecond
	}
	return nil
}

type esplora struct {
	urls    map[btc.Network]string
	client  *client
	cb      *gobreaker.CircuitBreaker
	limiter ratelimit.Limiter
}

// NewService returns a BitcoinService backed by esplora REST endpoints.
func NewService(cfg Config) (ports.BitcoinService, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = DefaultRequestsPerSecond
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	urls := make(map[btc.Network]string, len(cfg.URLs))
	for network, url := range cfg.URLs {
		urls[network] = strings.TrimSuffix(url, "/")
	}

	return &esplora{
		urls:    urls,
		client:  newHTTPClient(timeout),
		cb:      circuitbreaker.New("esplora"),
		limiter: ratelimit.New(rps),
	}, nil
}

func (e *esplora) apiURL(network btc.Network) (string, error) {
	url, ok := e.urls[network]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNetworkNotSupported, network)
	}
	return url, nil
}

// call paces the request and runs it behind the circuit breaker. Any
// non-2xx response counts as a failure.
func (e *esplora) call(
	ctx context.Context, method, url, body string, header map[string]string,
) (string, error) {
	resp, err := e.cb.Execute(func() (interface{}, error) {
		e.limiter.Take()

		var (
			status int
			resp   string
			err    error
		)
		if method == http.MethodPost {
			status, resp, err = e.client.post(ctx, url, body, header)
		} else {
			status, resp, err = e.client.get(ctx, url)
		}
		if err != nil {
			return nil, err
		}
		if status < 200 || status >= 300 {
			return nil, &HTTPError{StatusCode: status, Message: strings.TrimSpace(resp)}
		}
		return resp, nil
	})
	if err != nil {
		log.WithError(err).WithField("url", url).Debug("esplora request failed")
		return "", err
	}
	return resp.(string), nil
}
