/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package client

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// artifactChunk is the copy granularity for streamed artifact downloads;
// each chunk lands one progress record.
const artifactChunk = 1024 * 1024

// downloadToFile streams an authenticated GET straight to disk, creating
// parent directories as needed.  The progress total comes from the
// Content-Length header and is zero when the server does not send one.
// Streaming bodies cannot be replayed, so this path does not retry.
func (c *Client) downloadToFile(ctx context.Context, query, dest string, progress chan<- Progress) error {
	resp, err := c.fetchStream(ctx, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var total uint64
	if resp.ContentLength > 0 {
		total = uint64(resp.ContentLength)
	}
	pc := newProgressCounter(progress, total)
	defer pc.close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	fout, err := os.Create(dest)
	if err != nil {
		return err
	}
	buf := make([]byte, artifactChunk)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := fout.Write(buf[:n]); werr != nil {
				fout.Close()
				return werr
			}
			pc.add(uint64(n))
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			fout.Close()
			return rerr
		}
	}
	return fout.Close()
}
