/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package types

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptyToken   = errors.New("no token present")
	ErrInvalidToken = errors.New("invalid token")
)

// TokenPayload is the decoded middle segment of a Studio bearer token.
// The token is a standard three part JWT; we never verify the signature
// client side, we only need the claims to route and schedule renewal.
type TokenPayload struct {
	Username string
	Database string
	Exp      time.Time
}

type tokenClaims struct {
	Username string `json:"username"`
	Database string `json:"database"`
	jwt.RegisteredClaims
}

// DecodeToken extracts the username, database selector, and expiration from
// a bearer token without verifying its signature.  The token must be three
// dot delimited segments with a base64url (no padding) JSON payload carrying
// username, database, and exp; anything else is ErrInvalidToken.  Only the
// payload segment is decoded; servers have shipped tokens whose header is
// not itself valid base64.
func DecodeToken(token string) (tp TokenPayload, err error) {
	if len(token) == 0 {
		err = ErrEmptyToken
		return
	}
	parts := strings.Split(token, `.`)
	if len(parts) != 3 {
		err = fmt.Errorf("%w: want three dot delimited segments", ErrInvalidToken)
		return
	}
	raw, derr := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], `=`))
	if derr != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidToken, derr)
		return
	}
	var claims tokenClaims
	if jerr := json.Unmarshal(raw, &claims); jerr != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidToken, jerr)
		return
	}
	if claims.Username == `` {
		err = fmt.Errorf("%w: missing username", ErrInvalidToken)
		return
	} else if claims.Database == `` {
		err = fmt.Errorf("%w: missing database", ErrInvalidToken)
		return
	} else if claims.ExpiresAt == nil {
		err = fmt.Errorf("%w: missing exp", ErrInvalidToken)
		return
	}
	tp = TokenPayload{
		Username: claims.Username,
		Database: claims.Database,
		Exp:      claims.ExpiresAt.Time.UTC(),
	}
	return
}
