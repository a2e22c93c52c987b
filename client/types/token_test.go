/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package types

import (
	"errors"
	"testing"
	"time"
)

// payload is {"username":"alice","database":"test","exp":2000000000}
const alicePayload = `eyJ1c2VybmFtZSI6ImFsaWNlIiwiZGF0YWJhc2UiOiJ0ZXN0IiwiZXhwIjoyMDAwMDAwMDAwfQ`

func TestDecodeToken(t *testing.T) {
	tp, err := DecodeToken(`H.` + alicePayload + `.S`)
	if err != nil {
		t.Fatal(err)
	}
	if tp.Username != `alice` {
		t.Fatalf("username %q", tp.Username)
	}
	if tp.Database != `test` {
		t.Fatalf("database %q", tp.Database)
	}
	want := time.Date(2033, 5, 18, 3, 33, 20, 0, time.UTC)
	if !tp.Exp.Equal(want) {
		t.Fatalf("exp %v, want %v", tp.Exp, want)
	}
}

func TestDecodeTokenErrors(t *testing.T) {
	if _, err := DecodeToken(``); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("empty: got %v", err)
	}
	if _, err := DecodeToken(`justonechunk`); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("one segment: got %v", err)
	}
	if _, err := DecodeToken(`a.!!!.c`); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("bad base64: got %v", err)
	}
	// payload decodes but carries no username
	if _, err := DecodeToken(`a.e30.c`); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("empty claims: got %v", err)
	}
}
