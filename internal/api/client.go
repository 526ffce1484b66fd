package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/tcfw/sentinel/internal/sentinel"
	"github.com/tcfw/sentinel/pkg/ledger"
	"github.com/tcfw/sentinel/pkg/payment"
)

// Client talks to a running daemon
type Client struct {
	base string
	hc   *http.Client
}

func NewClient(addr string) *Client {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}

	return &Client{
		base: strings.TrimSuffix(addr, "/") + apiPrefix,
		hc:   http.DefaultClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return errors.Wrap(err, "encoding request")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, &body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "contacting daemon")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		e := &errorResponse{}
		if err := json.NewDecoder(resp.Body).Decode(e); err != nil || e.Error == "" {
			return fmt.Errorf("daemon responded %d", resp.StatusCode)
		}
		return fmt.Errorf("daemon responded %d: %s", resp.StatusCode, e.Error)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Process(ctx context.Context, in *sentinel.NewTransaction) (*sentinel.Decision, error) {
	d := &sentinel.Decision{}
	if err := c.do(ctx, http.MethodPost, "/transactions", in, d); err != nil {
		return nil, err
	}

	return d, nil
}

func (c *Client) Transactions(ctx context.Context) ([]payment.Transaction, error) {
	txs := []payment.Transaction{}
	if err := c.do(ctx, http.MethodGet, "/transactions", nil, &txs); err != nil {
		return nil, err
	}

	return txs, nil
}

func (c *Client) Stats(ctx context.Context) (*sentinel.Stats, error) {
	s := &sentinel.Stats{}
	if err := c.do(ctx, http.MethodGet, "/stats", nil, s); err != nil {
		return nil, err
	}

	return s, nil
}

func (c *Client) Chain(ctx context.Context) ([]*BlockView, error) {
	bs := []*BlockView{}
	if err := c.do(ctx, http.MethodGet, "/chain/", nil, &bs); err != nil {
		return nil, err
	}

	return bs, nil
}

func (c *Client) Block(ctx context.Context, height uint64) (*BlockView, error) {
	b := &BlockView{}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/chain/%d", height), nil, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (c *Client) Verify(ctx context.Context) (*ledger.Finding, error) {
	f := &ledger.Finding{}
	if err := c.do(ctx, http.MethodGet, "/chain/verify", nil, f); err != nil {
		return nil, err
	}

	return f, nil
}
