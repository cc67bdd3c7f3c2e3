package fetch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/sony/gobreaker"
)

// maxPayloadBytes bounds a single response body.
const maxPayloadBytes = 8 << 20

var (
	errCircuitOpen     = errors.New("circuit breaker open")
	errPayloadTooLarge = errors.New("payload too large")
)

// HTTPOptions configures an HTTPFetcher. Zero values take the defaults.
type HTTPOptions struct {
	// Timeout bounds a whole request. Zero means no timeout: a stalled
	// server holds the cycle until the run context is cancelled.
	Timeout time.Duration
	// TrustStore is a PEM bundle that replaces the system roots.
	TrustStore string
	// FailureThreshold is the number of consecutive failures that opens the
	// breaker. Default 5.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before letting a probe
	// through. Default 5m.
	OpenTimeout time.Duration
}

// HTTPFetcher GETs the conditions URL through a circuit breaker. It never
// retries; the next poll cycle is the retry.
type HTTPFetcher struct {
	url     string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewHTTPFetcher creates an HTTPFetcher. It fails if the trust store cannot
// be read or holds no certificates.
func NewHTTPFetcher(rawURL string, opts HTTPOptions, logger *slog.Logger) (*HTTPFetcher, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.TrustStore != "" {
		pool, err := loadTrustStore(opts.TrustStore)
		if err != nil {
			return nil, err
		}
		transport.TLSClientConfig = &tls.Config{
			RootCAs:    pool,
			MinVersion: tls.VersionTLS12,
		}
	}

	threshold := opts.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	openTimeout := opts.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 5 * time.Minute
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "conditions",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &HTTPFetcher{
		url: rawURL,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		circuit: cb,
		logger:  logger,
	}, nil
}

// Fetch performs one GET. Any non-2xx status is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	result, err := f.circuit.Execute(func() (interface{}, error) {
		return f.get(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}
	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conditions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("conditions server error: status %d: %s", resp.StatusCode, snippet)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read conditions body: %w", err)
	}
	if len(body) > maxPayloadBytes {
		return nil, fmt.Errorf("%w: over %d bytes", errPayloadTooLarge, maxPayloadBytes)
	}

	f.logger.Debug("conditions fetched", "url", f.url, "bytes", len(body))
	return body, nil
}

func loadTrustStore(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read TRUST_STORE: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("TRUST_STORE %s: no PEM certificates found", path)
	}
	return pool, nil
}
