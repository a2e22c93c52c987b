/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package client wraps the EdgeFirst Studio JSON-RPC API: session and
// token lifecycle, the retrying transport, parallel dataset transfer, and
// thin wrappers over the per-resource RPC methods.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/EdgeFirstAI/client-sub000/client/objlog"
	"github.com/EdgeFirstAI/client-sub000/client/types"

	"golang.org/x/net/publicsuffix"
)

const (
	defaultDomain   = `edgefirst.studio`
	clientUserAgent = `EdgeFirstClient`

	// readTimeout bounds how long we wait on response headers; bodies may
	// stream for much longer on large transfers.
	readTimeout = 60 * time.Second

	// renewalWindow is how close to expiry a token may get before an
	// authenticated call renews it first.
	renewalWindow = 3600 * time.Second
)

// session is the shared mutable state read on every request: the bearer
// token, its decoded payload, and the base URL derived from the payload's
// database field.  Single writer, many readers.
type session struct {
	mtx     sync.RWMutex
	token   string
	payload types.TokenPayload
	baseURL string
}

func (s *session) snapshot() (token, baseURL string, payload types.TokenPayload) {
	s.mtx.RLock()
	token, baseURL, payload = s.token, s.baseURL, s.payload
	s.mtx.RUnlock()
	return
}

func (s *session) setToken(token string, payload types.TokenPayload, baseURL string) {
	s.mtx.Lock()
	s.token, s.payload, s.baseURL = token, payload, baseURL
	s.mtx.Unlock()
}

func (s *session) setURL(baseURL string) {
	s.mtx.Lock()
	s.token, s.payload, s.baseURL = ``, types.TokenPayload{}, baseURL
	s.mtx.Unlock()
}

// Client is a long lived authenticated connection to a Studio server.  All
// methods are safe for concurrent use; calls serialize only on the token
// cell.
type Client struct {
	mtx       sync.Mutex // guards tokenPath and construction-time fields
	domain    string
	sess      session
	clnt      *http.Client // API traffic, carries Authorization
	objClnt   *http.Client // object store traffic, never authenticated
	tokenPath string
	objLog    objlog.ObjLog
	userAgent string

	// backoffUnit scales retry sleeps; tests shrink it
	backoffUnit time.Duration
}

// Opts configures client construction.
type Opts struct {
	// Domain is the root domain; server names and token database selectors
	// become subdomains of it.  Defaults to edgefirst.studio.
	Domain string
	// ObjLogger receives every request/response pair; nil discards.
	ObjLogger objlog.ObjLog
	// UserAgent overrides the User-Agent header.
	UserAgent string
}

// New returns a client pointed at the bare root domain with no credentials.
func New() *Client {
	return NewOpts(Opts{})
}

// NewOpts returns a client configured by opts.
func NewOpts(opts Opts) *Client {
	if opts.Domain == `` {
		opts.Domain = defaultDomain
	}
	if opts.ObjLogger == nil {
		opts.ObjLogger, _ = objlog.NewNilLogger()
	}
	if opts.UserAgent == `` {
		opts.UserAgent = clientUserAgent
	}
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	tr := &http.Transport{ResponseHeaderTimeout: readTimeout}
	c := &Client{
		domain:      opts.Domain,
		clnt:        &http.Client{Transport: tr, Jar: jar},
		objClnt:     &http.Client{Transport: &http.Transport{ResponseHeaderTimeout: readTimeout}},
		objLog:      opts.ObjLogger,
		userAgent:   opts.UserAgent,
		backoffUnit: time.Second,
	}
	c.sess.setURL(`https://` + opts.Domain)
	return c
}

// BaseURL returns the URL API requests are currently issued against.
func (c *Client) BaseURL() string {
	_, base, _ := c.sess.snapshot()
	return base
}

// SetServer points the client at https://<name>.<domain> and clears any
// held token.
func (c *Client) SetServer(name string) {
	if name == `` {
		c.sess.setURL(`https://` + c.domain)
		return
	}
	c.sess.setURL(fmt.Sprintf(`https://%s.%s`, name, c.domain))
}

// SetToken adopts an existing bearer token.  The token's database claim
// selects the server subdomain, so the base URL is rewritten to match.
func (c *Client) SetToken(token string) error {
	payload, err := types.DecodeToken(token)
	if err != nil {
		return err
	}
	c.sess.setToken(token, payload, fmt.Sprintf(`https://%s.%s`, payload.Database, c.domain))
	return nil
}

// Token returns the held bearer token, empty when logged out.
func (c *Client) Token() string {
	tok, _, _ := c.sess.snapshot()
	return tok
}

// Username returns the username claim of the held token.
func (c *Client) Username() (string, error) {
	tok, _, payload := c.sess.snapshot()
	if tok == `` {
		return ``, types.ErrEmptyToken
	}
	return payload.Username, nil
}

// TokenExpiration returns the expiry instant of the held token.
func (c *Client) TokenExpiration() (time.Time, error) {
	tok, _, payload := c.sess.snapshot()
	if tok == `` {
		return time.Time{}, types.ErrEmptyToken
	}
	return payload.Exp, nil
}

// Login authenticates with auth.login and adopts the returned token.
func (c *Client) Login(ctx context.Context, user, pass string) error {
	if user == `` {
		return invalidParams("empty username")
	}
	var raw tokenResult
	if err := c.rpcNoAuth(ctx, `auth.login`, types.LoginParams{Username: user, Password: pass}, &raw); err != nil {
		return err
	}
	return c.SetToken(raw.token)
}

// VerifyToken asks the server whether the held token is still accepted.
func (c *Client) VerifyToken(ctx context.Context) error {
	return c.rpc(ctx, `auth.verify_token`, nil, nil)
}

// RenewToken exchanges the held token for a fresh one via auth.refresh and
// writes it through to the bound token file if any.  Failures surface to
// the caller; the original operation is never silently retried.
func (c *Client) RenewToken(ctx context.Context) error {
	tok, _, payload := c.sess.snapshot()
	if tok == `` {
		return types.ErrEmptyToken
	}
	var raw tokenResult
	if err := c.rpcRaw(ctx, `auth.refresh`, types.RefreshParams{Username: payload.Username}, &raw, true, false); err != nil {
		return err
	}
	if err := c.SetToken(raw.token); err != nil {
		return err
	}
	return c.saveTokenIfBound()
}

// renewIfExpiring runs the pre-emptive renewal contract: before any
// authenticated RPC, a token within the renewal window of its expiry is
// refreshed first.  A token already past expiry cannot be refreshed and
// fails the call outright.
func (c *Client) renewIfExpiring(ctx context.Context) error {
	tok, _, payload := c.sess.snapshot()
	if tok == `` {
		return nil
	}
	left := time.Until(payload.Exp)
	if left <= 0 {
		return ErrTokenExpired
	}
	if left > renewalWindow {
		return nil
	}
	return c.RenewToken(ctx)
}

// SetTokenPath binds a persistence path for the bearer token.  An empty
// path selects the platform default location.  If the file exists and is
// non-empty its token is loaded and adopted.
func (c *Client) SetTokenPath(path string) error {
	if path == `` {
		var err error
		if path, err = DefaultTokenPath(); err != nil {
			return err
		}
	}
	c.mtx.Lock()
	c.tokenPath = path
	c.mtx.Unlock()
	tok, err := LoadToken(path)
	if err != nil {
		return err
	}
	if tok != `` {
		return c.SetToken(tok)
	}
	return nil
}

// SaveToken persists the held token to the bound path.
func (c *Client) SaveToken() error {
	tok, _, _ := c.sess.snapshot()
	if tok == `` {
		return types.ErrEmptyToken
	}
	c.mtx.Lock()
	path := c.tokenPath
	c.mtx.Unlock()
	if path == `` {
		return invalidParams("no token path bound")
	}
	return SaveToken(path, tok)
}

func (c *Client) saveTokenIfBound() error {
	c.mtx.Lock()
	path := c.tokenPath
	c.mtx.Unlock()
	if path == `` {
		return nil
	}
	tok, _, _ := c.sess.snapshot()
	return SaveToken(path, tok)
}

// Logout clears the held token and erases the bound token file if any.
func (c *Client) Logout() error {
	c.sess.setURL(`https://` + c.domain)
	c.mtx.Lock()
	path := c.tokenPath
	c.mtx.Unlock()
	if path == `` {
		return nil
	}
	return EraseToken(path)
}

// Close releases idle connections.  It does not terminate the server
// session; use Logout for that.
func (c *Client) Close() error {
	if tr, ok := c.clnt.Transport.(*http.Transport); ok {
		tr.CloseIdleConnections()
	}
	if tr, ok := c.objClnt.Transport.(*http.Transport); ok {
		tr.CloseIdleConnections()
	}
	return c.objLog.Close()
}

// Version reports the server version; it works without authentication.
func (c *Client) Version(ctx context.Context) (v string, err error) {
	err = c.rpcNoAuth(ctx, `version`, nil, &v)
	return
}

// apiURL joins a path query onto the current base URL.
func (c *Client) apiURL(pth string) string {
	_, base, _ := c.sess.snapshot()
	return base + pth
}

// tokenResult tolerates both shapes the auth endpoints have used: a bare
// JSON string and an object with a token field.
type tokenResult struct {
	token string
}

func (tr *tokenResult) UnmarshalJSON(b []byte) error {
	var s string
	if err := jsonUnmarshal(b, &s); err == nil {
		tr.token = s
		return nil
	}
	var obj struct {
		Token string `json:"token"`
	}
	if err := jsonUnmarshal(b, &obj); err != nil {
		return err
	}
	tr.token = obj.Token
	return nil
}
