/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package client

import (
	"sync/atomic"

	"github.com/EdgeFirstAI/client-sub000/client/types"
)

// Progress is re-exported for callers that only import the client package.
type Progress = types.Progress

// progressCounter is the single producer side of a progress sink: a
// monotone atomic counter whose additions are mirrored onto the channel.
// close releases the channel so the receiver sees end of stream.
type progressCounter struct {
	sink  chan<- types.Progress
	total uint64
	cur   atomic.Uint64
}

func newProgressCounter(sink chan<- types.Progress, total uint64) *progressCounter {
	pc := &progressCounter{sink: sink, total: total}
	if sink != nil && total > 0 {
		// announce the known amount of work up front
		sink <- types.Progress{Current: 0, Total: total}
	}
	return pc
}

func (pc *progressCounter) add(n uint64) {
	cur := pc.cur.Add(n)
	if pc.sink != nil {
		pc.sink <- types.Progress{Current: cur, Total: pc.total}
	}
}

func (pc *progressCounter) close() {
	if pc.sink != nil {
		close(pc.sink)
		pc.sink = nil
	}
}
