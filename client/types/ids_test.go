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
)

func TestDatasetIDParse(t *testing.T) {
	id, err := ParseDatasetID(`ds-10a`)
	if err != nil {
		t.Fatal(err)
	}
	if id.Value() != 266 {
		t.Fatalf("ds-10a parsed to %d, want 266", id.Value())
	}
	if id.String() != `ds-10a` {
		t.Fatalf("reformat got %q", id.String())
	}
}

func TestIDRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 15, 16, 255, 266, 1 << 32, ^uint64(0)} {
		id := NewSampleID(v)
		back, err := ParseSampleID(id.String())
		if err != nil {
			t.Fatalf("value %d: %v", v, err)
		}
		if back != id {
			t.Fatalf("value %d round tripped to %d", v, back.Value())
		}
	}
}

func TestIDParseErrors(t *testing.T) {
	if _, err := ParseDatasetID(`p-10a`); !errors.Is(err, ErrMissingIDPrefix) {
		t.Fatalf("wrong prefix: got %v", err)
	}
	if _, err := ParseDatasetID(`10a`); !errors.Is(err, ErrMissingIDPrefix) {
		t.Fatalf("no prefix: got %v", err)
	}
	if _, err := ParseDatasetID(`ds-`); !errors.Is(err, ErrEmptyIDValue) {
		t.Fatalf("empty value: got %v", err)
	}
	if _, err := ParseDatasetID(`ds-xyz`); !errors.Is(err, ErrBadIDValue) {
		t.Fatalf("bad hex: got %v", err)
	}
	if _, err := ParseDatasetID(``); !errors.Is(err, ErrMissingIDPrefix) {
		t.Fatalf("empty string: got %v", err)
	}
}

func TestIDPrefixes(t *testing.T) {
	cases := []struct {
		id   interface{ String() string }
		want string
	}{
		{NewOrganizationID(1), `org-1`},
		{NewProjectID(1), `p-1`},
		{NewDatasetID(1), `ds-1`},
		{NewAnnotationSetID(1), `as-1`},
		{NewExperimentID(1), `exp-1`},
		{NewTrainingSessionID(1), `t-1`},
		{NewValidationSessionID(1), `v-1`},
		{NewTaskID(1), `task-1`},
		{NewSnapshotID(1), `ss-1`},
		{NewSampleID(1), `s-1`},
		{NewImageID(1), `im-1`},
		{NewSequenceID(1), `se-1`},
		{NewApplicationID(1), `app-1`},
	}
	for _, c := range cases {
		if got := c.id.String(); got != c.want {
			t.Fatalf("got %q, want %q", got, c.want)
		}
	}
}

func TestIDHexIsLowercase(t *testing.T) {
	id, err := ParseDatasetID(`ds-10A`)
	if err != nil {
		t.Fatal(err)
	}
	if id.String() != `ds-10a` {
		t.Fatalf("got %q, want lowercased ds-10a", id.String())
	}
}

func TestIDTextMarshalling(t *testing.T) {
	id := NewSnapshotID(4096)
	b, err := id.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `ss-1000` {
		t.Fatalf("got %q", b)
	}
	var back SnapshotID
	if err := back.UnmarshalText(b); err != nil {
		t.Fatal(err)
	}
	if back != id {
		t.Fatalf("got %v, want %v", back, id)
	}
}
