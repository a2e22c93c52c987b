/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/EdgeFirstAI/client-sub000/client/types"
)

const (
	maxRetries = 10
	apiPath    = `/api`

	maxDataDrain = 1024 * 1024 * 4
)

// endpointClass drives the retry backoff ceiling.  API calls are cheap and
// give up quickly; object store transfers tolerate longer stalls.
type endpointClass int

const (
	studioAPI endpointClass = iota
	fileIO
)

// classifyEndpoint is a policy hook on the URL, not a per-method table.
func classifyEndpoint(u *url.URL) endpointClass {
	if strings.HasPrefix(u.Path, apiPath) {
		return studioAPI
	}
	return fileIO
}

func (c *Client) backoffCeiling(class endpointClass) time.Duration {
	if class == fileIO {
		return 60 * c.backoffUnit
	}
	return 10 * c.backoffUnit
}

// backoff sleeps attempt*1s (scaled by backoffUnit) capped by the class
// ceiling, bailing early if ctx is cancelled.
func (c *Client) backoff(ctx context.Context, attempt int, class endpointClass) error {
	d := time.Duration(attempt) * c.backoffUnit
	if ceil := c.backoffCeiling(class); d > ceil {
		d = ceil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func jsonUnmarshal(b []byte, v any) error {
	return json.Unmarshal(b, v)
}

// rpc issues an authenticated JSON-RPC call, renewing the token first when
// it is close to expiry.
func (c *Client) rpc(ctx context.Context, method string, params, result any) error {
	return c.rpcRaw(ctx, method, params, result, true, true)
}

// rpcNoAuth issues a call without the Authorization header and without the
// pre-call renewal check.
func (c *Client) rpcNoAuth(ctx context.Context, method string, params, result any) error {
	return c.rpcRaw(ctx, method, params, result, false, false)
}

func (c *Client) rpcRaw(ctx context.Context, method string, params, result any, auth, renew bool) error {
	if auth && renew {
		if err := c.renewIfExpiring(ctx); err != nil {
			return err
		}
	}
	body, err := json.Marshal(types.RPCRequest{JSONRPC: `2.0`, Method: method, Params: params})
	if err != nil {
		return err
	}
	uri := c.apiURL(apiPath)
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(body))
		if err != nil {
			return err
		}
		c.populateHeaders(req.Header, auth)
		req.Header.Set(`Content-Type`, `application/json`)

		resp, err := c.clnt.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if attempt < maxRetries {
				if berr := c.backoff(ctx, attempt, classifyEndpoint(req.URL)); berr != nil {
					return berr
				}
			}
			continue
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drainResponse(resp)
			return ErrUnauthorized
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			drainResponse(resp)
			lastErr = &HTTPError{Status: resp.StatusCode, URL: uri}
			if attempt < maxRetries {
				if berr := c.backoff(ctx, attempt, classifyEndpoint(req.URL)); berr != nil {
					return berr
				}
			}
			continue
		}
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			if attempt < maxRetries {
				if berr := c.backoff(ctx, attempt, classifyEndpoint(req.URL)); berr != nil {
					return berr
				}
			}
			continue
		}
		return c.decodeEnvelope(method, raw, result)
	}
	return &MaxRetriesError{Attempts: maxRetries, Last: lastErr}
}

// decodeEnvelope surfaces exactly one of result or error.  Malformed JSON
// is fatal, never retried.
func (c *Client) decodeEnvelope(method string, raw []byte, result any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ErrInvalidResponse
	}
	var env types.RPCResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("malformed RPC response: %w", err)
	}
	if env.Error != nil {
		c.objLog.Log(env.ID, method, env.Error)
		return env.Error
	}
	if env.Result == nil {
		return ErrInvalidResponse
	}
	if result != nil {
		if err := json.Unmarshal(env.Result, result); err != nil {
			return fmt.Errorf("malformed RPC result: %w", err)
		}
	}
	c.objLog.Log(env.ID, method, result)
	return nil
}

// FilePart is one file entry in a multipart POST.
type FilePart struct {
	Name   string
	Reader io.Reader
}

// postMultipart POSTs /api?method=<method> as multipart/form-data: a
// params text field carrying the JSON parameters plus one or more file
// parts.  The response is the usual RPC envelope.  The body streams, so
// this path does not retry.
func (c *Client) postMultipart(ctx context.Context, method string, params any, files []FilePart, result any) error {
	pb, err := json.Marshal(params)
	if err != nil {
		return err
	}
	pr, pw := io.Pipe()
	wtr := multipart.NewWriter(pw)
	wch := make(chan error, 1)
	go func() {
		if err := wtr.WriteField(`params`, string(pb)); err != nil {
			pw.CloseWithError(err)
			wch <- err
			return
		}
		for _, f := range files {
			part, err := wtr.CreateFormFile(`file`, f.Name)
			if err != nil {
				pw.CloseWithError(err)
				wch <- err
				return
			}
			if _, err := io.Copy(part, f.Reader); err != nil {
				pw.CloseWithError(err)
				wch <- err
				return
			}
		}
		if err := wtr.Close(); err != nil {
			pw.CloseWithError(err)
			wch <- err
			return
		}
		wch <- pw.Close()
	}()

	uri := c.apiURL(apiPath + `?method=` + url.QueryEscape(method))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, pr)
	if err != nil {
		pr.Close()
		<-wch
		return err
	}
	c.populateHeaders(req.Header, true)
	req.Header.Set(`Content-Type`, wtr.FormDataContentType())

	resp, err := c.clnt.Do(req)
	if err != nil {
		pr.Close()
		<-wch
		return err
	}
	// a server may answer before consuming the whole stream, which closes
	// the pipe under the writer; the response decides the outcome then
	if werr := <-wch; werr != nil && !errors.Is(werr, io.ErrClosedPipe) {
		drainResponse(resp)
		return werr
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drainResponse(resp)
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		drainResponse(resp)
		return &HTTPError{Status: resp.StatusCode, URL: uri}
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return err
	}
	return c.decodeEnvelope(method, raw, result)
}

// fetch performs an authenticated raw GET under the base URL and returns
// the body.  Used by server resident download endpoints.
func (c *Client) fetch(ctx context.Context, query string) ([]byte, error) {
	resp, err := c.fetchStream(ctx, query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// fetchStream is fetch without buffering; the caller owns the body.
func (c *Client) fetchStream(ctx context.Context, query string) (*http.Response, error) {
	uri := c.apiURL(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	c.populateHeaders(req.Header, true)
	resp, err := c.clnt.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drainResponse(resp)
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		drainResponse(resp)
		return nil, &HTTPError{Status: resp.StatusCode, URL: uri}
	}
	return resp, nil
}

func (c *Client) populateHeaders(h http.Header, auth bool) {
	h.Set(`Accept`, `application/json`)
	h.Set(`User-Agent`, c.userAgent)
	if auth {
		if tok, _, _ := c.sess.snapshot(); tok != `` {
			h.Set(`Authorization`, `Bearer `+tok)
		}
	}
}

// drainResponse reads off up to 4MB and closes the body so the connection
// can be reused.
func drainResponse(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxDataDrain))
	resp.Body.Close()
}
