// Package entropy provides the random sources used by the simulation: a seeded PRNG for
// reproducible runs and a random.org client with a crypto/rand fallback.
package entropy

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"
)

// Source yields uniform floats in [0, 1).
type Source interface {
	Float64() float64
}

const (
	randomOrgURL = "https://api.random.org/json-rpc/4/invoke"
	batchSize    = 100
	refillBelow  = 10
	retryAfter   = time.Minute
)

// Client draws decimal fractions from random.org in batches and hands them out one at
// a time. Refills run in the background so a draw never waits on the network; while
// the pool is empty draws fall through to crypto/rand.
type Client struct {
	key  string
	url  string
	http *http.Client
	now  func() time.Time

	mu        sync.Mutex
	pool      []float64
	refilling bool
	retryAt   time.Time
}

// NewClient returns a random.org client, or nil when apiKey is empty.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		key:  apiKey,
		url:  randomOrgURL,
		http: &http.Client{Timeout: 15 * time.Second},
		now:  time.Now,
	}
}

// Enabled reports whether c will call random.org.
func (c *Client) Enabled() bool {
	return c != nil && c.key != ""
}

// Prime fills the pool synchronously. Call it before the client is shared.
func (c *Client) Prime(ctx context.Context) error {
	more, err := c.fetch(ctx, batchSize)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.retryAt = c.now().Add(retryAfter)
		return err
	}
	c.pool = append(c.pool, more...)
	return nil
}

// Float64 implements Source.
func (c *Client) Float64() float64 {
	if !c.Enabled() {
		return Crypto{}.Float64()
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pool) < refillBelow && !c.refilling && !c.now().Before(c.retryAt) {
		c.refilling = true
		go c.refill()
	}
	if len(c.pool) == 0 {
		return Crypto{}.Float64()
	}
	v := c.pool[0]
	c.pool = c.pool[1:]
	return v
}

func (c *Client) refill() {
	ctx, cancel := context.WithTimeout(context.Background(), c.http.Timeout)
	defer cancel()
	more, err := c.fetch(ctx, batchSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.refilling = false
	if err != nil {
		slog.Debug("random.org refill failed", "error", err, "retry_in", retryAfter)
		c.retryAt = c.now().Add(retryAfter)
		return
	}
	c.pool = append(c.pool, more...)
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int       `json:"id"`
}

type rpcParams struct {
	APIKey        string `json:"apiKey"`
	N             int    `json:"n"`
	DecimalPlaces int    `json:"decimalPlaces"`
}

type rpcResponse struct {
	Result struct {
		Random struct {
			Data []float64 `json:"data"`
		} `json:"random"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) fetch(ctx context.Context, n int) ([]float64, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "generateDecimalFractions",
		Params:  rpcParams{APIKey: c.key, N: n, DecimalPlaces: 6},
		ID:      1,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if out.Error != nil {
		return nil, errors.New(out.Error.Message)
	}
	data := out.Result.Random.Data
	for i, v := range data {
		data[i] = halfOpen(v)
	}
	return data, nil
}

// halfOpen maps random.org's closed [0,1] onto [0,1).
func halfOpen(v float64) float64 {
	switch {
	case v >= 1:
		return math.Nextafter(1, 0)
	case v < 0:
		return 0
	}
	return v
}

// Crypto is a Source backed by crypto/rand.
type Crypto struct{}

// Float64 implements Source using the top 53 bits of a random word.
func (Crypto) Float64() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0.5
	}
	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}

// FromClient returns c as a Source when it is enabled, otherwise fallback.
func FromClient(c *Client, fallback Source) Source {
	if c.Enabled() {
		return c
	}
	return fallback
}
