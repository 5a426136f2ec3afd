// Package enclave is a REST client for an Orion/Tessera style enclave, the
// confidential store private payloads are written to.
package enclave

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ConsenSysQuorum/eea-gateway/core"
	"github.com/ConsenSysQuorum/eea-gateway/log"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const upcheckReply = "I'm up!"

// ClientError is a non-2xx reply from the enclave.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("enclave returned %d: %s", e.StatusCode, e.Message)
}

type sendRequest struct {
	Payload        []byte   `json:"payload"`
	From           string   `json:"from"`
	To             []string `json:"to,omitempty"`
	PrivacyGroupID string   `json:"privacyGroupId,omitempty"`
}

type SendResponse struct {
	Key string `json:"key"`
}

type receiveRequest struct {
	Key string `json:"key"`
	To  string `json:"to,omitempty"`
}

type ReceiveResponse struct {
	Payload        []byte `json:"payload"`
	PrivacyGroupID string `json:"privacyGroupId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Client struct {
	url    string
	client *http.Client

	// ObserveCall, if set, is told the outcome of every enclave call.
	ObserveCall func(op string, err error)
}

// NewClient returns a client for the enclave at url. tlsCfg may be nil.
func NewClient(url string, tlsCfg *tls.Config) *Client {
	return &Client{
		url:    strings.TrimSuffix(url, "/"),
		client: core.NewHttpClient(tlsCfg),
	}
}

// Send stores payload for the private-for recipients and returns the
// enclave key.
func (c *Client) Send(ctx context.Context, payload []byte, from string, to []string) (string, error) {
	if to == nil {
		to = []string{}
	}
	var resp SendResponse
	err := c.post(ctx, "send", "/send", sendRequest{Payload: payload, From: from, To: to}, &resp)
	return resp.Key, err
}

// SendToGroup stores payload for every member of the privacy group.
func (c *Client) SendToGroup(ctx context.Context, payload []byte, from, groupID string) (string, error) {
	var resp SendResponse
	err := c.post(ctx, "sendToGroup", "/send", sendRequest{Payload: payload, From: from, PrivacyGroupID: groupID}, &resp)
	return resp.Key, err
}

// Receive fetches the payload stored under key as seen by the enclave
// identity to.
func (c *Client) Receive(ctx context.Context, key, to string) (*ReceiveResponse, error) {
	var resp ReceiveResponse
	if err := c.post(ctx, "receive", "/receive", receiveRequest{Key: key, To: to}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpCheck returns nil when the enclave answers its upcheck endpoint.
func (c *Client) UpCheck(ctx context.Context) (err error) {
	defer func() { c.observe("upcheck", err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/upcheck", nil)
	if err != nil {
		log.Error("UpCheck - get req failed", "err", err)
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn("UpCheck - client do req failed", "err", err)
		return errors.Wrap(core.ErrEnclaveDown, err.Error())
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	log.Debug("UpCheck - response", "status", resp.Status, "body", string(body))
	if resp.StatusCode == http.StatusOK && string(body) == upcheckReply {
		return nil
	}
	return core.ErrEnclaveDown
}

// WaitUntilUp retries UpCheck until it succeeds, attempts are used up or
// ctx is done.
func (c *Client) WaitUntilUp(ctx context.Context, attempts int, wait time.Duration) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = c.UpCheck(ctx); err == nil {
			log.Info("enclave is up", "url", c.url)
			return nil
		}
		log.Warn("enclave upcheck failed", "url", c.url, "attempt", i, "err", err)
		if i == attempts {
			break
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (c *Client) post(ctx context.Context, op, path string, in, out interface{}) (err error) {
	defer func() { c.observe(op, err) }()

	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrapf(err, "%s: marshal request", op)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "%s: new request", op)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s: %s", op, c.url)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "%s: read response", op)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ClientError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrapf(err, "%s: decode response", op)
	}
	log.Trace("enclave call", "op", op, "status", resp.StatusCode)
	return nil
}

func (c *Client) observe(op string, err error) {
	if c.ObserveCall != nil {
		c.ObserveCall(op, err)
	}
}

// errorMessage extracts the reason from an enclave error body, which is
// either {"error": "..."} or plain text.
func errorMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
