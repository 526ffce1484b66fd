package screening

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"
	"github.com/tcfw/sentinel/pkg/payment"
)

const (
	maxResponseSize = 1 << 20
)

var (
	_ Classifier = (*HTTPClassifier)(nil)
)

type classifyRequest struct {
	ID       string           `json:"id"`
	VPA      string           `json:"vpa"`
	Amount   float64          `json:"amount"`
	Currency string           `json:"currency"`
	Category payment.Category `json:"category"`
	Location string           `json:"location"`
	Device   string           `json:"deviceSignature"`
}

// HTTPClassifier asks a remote risk service to assess a transaction
type HTTPClassifier struct {
	endpoint string
	apiKey   string
	client   *http.Client
	retries  int
	minWait  time.Duration
	maxWait  time.Duration
}

type HTTPOption func(*HTTPClassifier)

func WithAPIKey(k string) HTTPOption {
	return func(c *HTTPClassifier) {
		c.apiKey = k
	}
}

func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClassifier) {
		c.client = hc
	}
}

func WithRetries(n int, min, max time.Duration) HTTPOption {
	return func(c *HTTPClassifier) {
		c.retries = n
		c.minWait = min
		c.maxWait = max
	}
}

func NewHTTPClassifier(endpoint string, opts ...HTTPOption) *HTTPClassifier {
	c := &HTTPClassifier{
		endpoint: endpoint,
		client:   http.DefaultClient,
		retries:  2,
		minWait:  200 * time.Millisecond,
		maxWait:  2 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("classifier responded %d", e.code)
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}

	return !errors.Is(err, ErrBadAssessment)
}

func (c *HTTPClassifier) Classify(ctx context.Context, tx *payment.Transaction) (*payment.Assessment, error) {
	body, err := json.Marshal(&classifyRequest{
		ID:       tx.ID,
		VPA:      tx.To,
		Amount:   tx.Amount,
		Currency: tx.Currency,
		Category: tx.Category,
		Location: tx.Location,
		Device:   tx.DeviceFingerprint,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshaling request")
	}

	b := &backoff.Backoff{
		Min:    c.minWait,
		Max:    c.maxWait,
		Factor: 2,
		Jitter: true,
	}

	for {
		a, err := c.do(ctx, body)
		if err == nil {
			return a, nil
		}

		if !retryable(err) || int(b.Attempt()) >= c.retries || ctx.Err() != nil {
			return nil, err
		}

		select {
		case <-time.After(b.Duration()):
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "waiting to retry classifier")
		}
	}
}

func (c *HTTPClassifier) do(ctx context.Context, body []byte) (*payment.Assessment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling classifier")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, &statusError{resp.StatusCode}
	}

	a := &payment.Assessment{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(a); err != nil {
		return nil, errors.Wrap(ErrBadAssessment, err.Error())
	}

	return a, nil
}
