/***************************************************************
 *
 * Copyright (C) 2025, The rcpilot Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you
 * may not use this file except in compliance with the License.  You may
 * obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 ***************************************************************/

// Package rcclient is the HTTP+JSON transport to the rclone remote-control
// daemon.  Every daemon interaction in the repository flows through
// Client.Call; the higher layers never touch net/http directly.
package rcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/rcpilot/rcpilot/config"
	"github.com/rcpilot/rcpilot/param"
)

// Client talks to a single rclone rc daemon.  The underlying HTTP client is
// created lazily on first use and must not be shared across instances; one
// Client owns exactly one daemon session.
type Client struct {
	baseURL  string
	username string
	password string
	useAuth  bool

	httpOnce   sync.Once
	httpClient *http.Client

	remotesCache *ttlcache.Cache[string, []Remote]
}

// Option customizes a Client at construction time.
type Option func(*Client)

// WithBasicAuth attaches rc credentials to every request.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
		c.useAuth = true
	}
}

// New builds a client for the daemon at baseURL (e.g. "http://localhost:5572").
// An empty baseURL falls back to the configured daemon address and port.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s:%d", param.Daemon_Address.GetString(), param.Daemon_Port.GetInt())
	}

	c := &Client{
		baseURL: baseURL,
		remotesCache: ttlcache.New[string, []Remote](
			ttlcache.WithTTL[string, []Remote](param.Client_RemotesCacheTTL.GetDuration()),
			ttlcache.WithDisableTouchOnHit[string, []Remote](),
		),
	}
	if param.Daemon_AuthEnabled.GetBool() {
		c.useAuth = true
		c.username = param.Daemon_Username.GetString()
		c.password = param.Daemon_Password.GetString()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) session() *http.Client {
	c.httpOnce.Do(func() {
		c.httpClient = &http.Client{
			Transport: config.GetTransport(),
			Timeout:   param.Client_RequestTimeout.GetDuration(),
		}
	})
	return c.httpClient
}

// Call posts params as JSON to the named endpoint ("backend/command") and
// returns the raw response body.  Non-2xx responses become *StatusError with
// the daemon's error message extracted when the body is the usual
// {"error": ...} shape.
func (c *Client) Call(ctx context.Context, endpoint string, params any) (json.RawMessage, error) {
	if params == nil {
		params = struct{}{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal request for %s", endpoint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request for %s", endpoint)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.useAuth {
		req.SetBasicAuth(c.username, c.password)
	}

	log.Debugf("rc call %s: %s", endpoint, string(body))
	resp, err := c.session().Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request to %s failed", endpoint)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read response from %s", endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Endpoint: endpoint,
			Code:     resp.StatusCode,
			Message:  daemonErrorMessage(respBody),
		}
	}

	return respBody, nil
}

// call is the typed convenience over Call for endpoints with a known
// response shape.
func (c *Client) call(ctx context.Context, endpoint string, params, result any) error {
	raw, err := c.Call(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return errors.Wrapf(err, "failed to decode response from %s", endpoint)
	}
	return nil
}

func daemonErrorMessage(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	return string(body)
}

// IsReady probes rc/noop.  A connection-level failure means the daemon is
// not listening yet; an HTTP-level error still proves something answered.
func (c *Client) IsReady(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	_, err := c.Call(ctx, "rc/noop", nil)
	if err == nil {
		return true
	}
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}

// Close releases the client's network resources.  Safe to call once per
// instance, at teardown.
func (c *Client) Close() {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	c.remotesCache.DeleteAll()
}
