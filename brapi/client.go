// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package brapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pilosa/brapi2isa"
	"github.com/pkg/errors"
)

// ClientOption is a functional option type for Client.
type ClientOption func(c *Client)

// OptClientLogger sets the logger of a Client.
func OptClientLogger(l brapi2isa.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// OptClientStatter sets the stats collector of a Client.
func OptClientStatter(s brapi2isa.Statter) ClientOption {
	return func(c *Client) {
		c.stats = s
	}
}

// OptClientHTTPClient replaces the HTTP client used to make requests. The
// configured timeout is not applied to it.
func OptClientHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.hc = hc
	}
}

// OptClientBackOff sets the function used to get a fresh backoff policy for
// each request.
func OptClientBackOff(fn func() backoff.BackOff) ClientOption {
	return func(c *Client) {
		c.newBackOff = fn
	}
}

// Client talks to a BrAPI v1 server.
type Client struct {
	cfg        Config
	hc         *http.Client
	log        brapi2isa.Logger
	stats      brapi2isa.Statter
	newBackOff func() backoff.BackOff
}

// NewClient validates cfg and returns a new Client with the options applied.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	cfg, err := cfg.validate()
	if err != nil {
		return nil, errors.Wrap(err, "validating config")
	}
	c := &Client{
		cfg:   cfg,
		hc:    &http.Client{Timeout: cfg.Timeout},
		log:   brapi2isa.NopLogger{},
		stats: brapi2isa.NopStatter{},
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = 2 * time.Minute
			return bo
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the validated configuration of the client.
func (c *Client) Config() Config {
	return c.cfg
}

func transient(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// do performs a request against resource, retrying transient failures, and
// returns the response body. Any non-2xx status that is not retried, or still
// failing when retries run out, is returned as a *brapi2isa.TransportError.
func (c *Client) do(ctx context.Context, method, resource string, params url.Values, body interface{}) ([]byte, error) {
	u := c.cfg.Endpoint + resource
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "marshaling request body")
		}
	}

	var respBody []byte
	operation := func() error {
		var rd io.Reader
		if payload != nil {
			rd = bytes.NewReader(payload)
		}
		req, err := http.NewRequest(method, u, rd)
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, "creating request"))
		}
		req = req.WithContext(ctx)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		c.stats.Count("brapi.requests", 1, 1, "method:"+method)
		resp, err := c.hc.Do(req)
		if err != nil {
			c.stats.Count("brapi.request_errors", 1, 1, "method:"+method)
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			c.log.Printf("%s %s failed, retrying: %v", method, u, err)
			return errors.Wrapf(err, "%s %s", method, u)
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		c.stats.Timing("brapi.latency", time.Since(start), 1, "method:"+method)
		if err != nil {
			return errors.Wrap(err, "reading response body")
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			c.stats.Count("brapi.request_errors", 1, 1, "method:"+method, "status:"+strconv.Itoa(resp.StatusCode))
			terr := &brapi2isa.TransportError{Method: method, URL: u, StatusCode: resp.StatusCode, Body: truncate(string(b), 512)}
			if transient(resp.StatusCode) {
				c.log.Printf("%v, retrying", terr)
				return terr
			}
			return backoff.Permanent(terr)
		}
		respBody = b
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.cfg.MaxRetries)), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}
	c.log.Debugf("%s %s: %d bytes", method, u, len(respBody))
	return respBody, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
