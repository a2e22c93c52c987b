/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package coco

import (
	"fmt"
	"strings"
)

// Error is a structural problem with a COCO document: a dangling id, a
// degenerate bbox, or mismatched parallel inputs.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return `coco: ` + e.Msg }

func cocoErrorf(format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// offenders formats the first few names of a missing-artifact list.
func offenders(names []string) string {
	const show = 5
	if len(names) <= show {
		return strings.Join(names, `, `)
	}
	return fmt.Sprintf("%s, … (%d total)", strings.Join(names[:show], `, `), len(names))
}

// MissingImagesError reports image files referenced by the document but
// absent from the searched locations.
type MissingImagesError struct {
	Names    []string
	Searched []string
}

func (e *MissingImagesError) Error() string {
	return fmt.Sprintf("missing images: %s (searched %s)",
		offenders(e.Names), strings.Join(e.Searched, `, `))
}

// MissingAnnotationsError reports an archive or directory with no usable
// annotation files.
type MissingAnnotationsError struct {
	Searched []string
}

func (e *MissingAnnotationsError) Error() string {
	return `missing annotations (searched ` + strings.Join(e.Searched, `, `) + `)`
}

// MissingLabelError reports a category name that could not be resolved.
type MissingLabelError struct {
	Name string
}

func (e *MissingLabelError) Error() string {
	return `missing label: ` + e.Name
}
