// SPDX-License-Identifier: MIT

package iptvorg

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Client fetches the channels and streams documents.
type Client struct {
	channelsURL string
	streamsURL  string
	http        *http.Client
	limiter     *rate.Limiter
}

// Options configures optional client behaviour.
type Options struct {
	Timeout time.Duration // per-request timeout, default 20s
	RPS     float64       // upstream request budget, default 2/s
}

// New creates a client for the given dataset endpoints.
func New(channelsURL, streamsURL string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	rps := opts.RPS
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		channelsURL: channelsURL,
		streamsURL:  streamsURL,
		http:        &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Channels fetches and decodes channels.json.
func (c *Client) Channels(ctx context.Context) ([]Channel, error) {
	var out []Channel
	if err := c.getJSON(ctx, c.channelsURL, &out); err != nil {
		return nil, fmt.Errorf("channels: %w", err)
	}
	return out, nil
}

// Streams fetches and decodes streams.json.
func (c *Client) Streams(ctx context.Context) ([]Stream, error) {
	var out []Stream
	if err := c.getJSON(ctx, c.streamsURL, &out); err != nil {
		return nil, fmt.Errorf("streams: %w", err)
	}
	return out, nil
}

// Fetch retrieves both documents concurrently and returns the merged payload.
func (c *Client) Fetch(ctx context.Context) (Payload, error) {
	var p Payload
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		chs, err := c.Channels(ctx)
		if err != nil {
			return err
		}
		p.Channels = chs
		return nil
	})
	g.Go(func() error {
		sts, err := c.Streams(ctx)
		if err != nil {
			return err
		}
		p.Streams = sts
		return nil
	})
	if err := g.Wait(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer res.Body.Close() //nolint:errcheck

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &StatusError{URL: url, Code: res.StatusCode}
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return &DecodeError{URL: url, Err: err}
	}
	return nil
}
