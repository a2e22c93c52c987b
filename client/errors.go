/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package client

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidResponse marks a 2xx response body carrying neither a
	// result nor an error, or an empty body.
	ErrInvalidResponse = errors.New("invalid RPC response")

	// ErrUnauthorized is a 401 from the server; with ErrTokenExpired it is
	// the only signal that warrants a fresh login.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired is returned when an authenticated call finds the held
	// token already past its expiry; renewal cannot help at that point.
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidEtag means the object store PUT response lacked a usable
	// ETag header.
	ErrInvalidEtag = errors.New("missing or malformed ETag in upload response")

	// ErrUnsupportedFormat marks a file extension outside the supported set.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// MaxRetriesError reports that the transport retry budget was consumed
// without a successful exchange.
type MaxRetriesError struct {
	Attempts int
	Last     error
}

func (e *MaxRetriesError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("max retries exceeded after %d attempts: %v", e.Attempts, e.Last)
	}
	return fmt.Sprintf("max retries exceeded after %d attempts", e.Attempts)
}

func (e *MaxRetriesError) Unwrap() error { return e.Last }

// HTTPError is a non-2xx status at the transport layer, outside the RPC
// envelope.
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d on %s", e.Status, e.URL)
}

// InvalidParametersError marks a caller supplied argument that violates a
// precondition before any network traffic happens.
type InvalidParametersError struct {
	Msg string
}

func (e *InvalidParametersError) Error() string {
	return `invalid parameters: ` + e.Msg
}

func invalidParams(format string, args ...any) error {
	return &InvalidParametersError{Msg: fmt.Sprintf(format, args...)}
}
