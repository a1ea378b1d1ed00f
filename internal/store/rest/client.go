package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

func init() {
	// Store documents carry prices as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Client talks to a document-collection REST store: a base URL plus a
// collection name plus an optional document ID. Bodies are JSON. Every call
// is attempted exactly once; there is no retry policy anywhere in the
// client, failures surface to the caller.
type Client struct {
	base string
	http *http.Client
}

// NewClient validates baseURL and returns a Client using hc for transport.
// A nil hc falls back to http.DefaultClient.
func NewClient(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("base URL must be http(s), got %q", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: hc,
	}, nil
}

// StatusError reports a non-2xx response from the store.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

// isNotFound reports whether err is a 404 from the store.
func isNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// do performs one request against the store. body (when non-nil) is JSON
// encoded; out (when non-nil) receives the decoded response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "encode %s %s body", method, path)
		}
		rd = bytes.NewReader(data)
	}

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return errors.Wrapf(err, "build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrapf(err, "decode %s %s response", method, path)
		}
	}
	return nil
}

// docID carries a document ID that may arrive as a JSON number or a string.
// Internally IDs are opaque strings; numeric ones go back on the wire as
// numbers so the store keeps its ID type stable.
type docID string

func (d *docID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = docID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = docID(n.String())
	return nil
}

func (d docID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(d), 10, 64); err == nil {
		return []byte(d), nil
	}
	return json.Marshal(string(d))
}
