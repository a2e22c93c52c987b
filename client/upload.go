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
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/EdgeFirstAI/client-sub000/client/types"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// partSize is the fixed multipart chunk size.  A file whose size is an
// exact multiple of it gets a full-size tail part, never a zero byte one.
const partSize int64 = 100 * 1024 * 1024

// SnapshotFile names one local file and its object key within a snapshot
// upload.
type SnapshotFile struct {
	Key  string
	Path string
}

// UploadSnapshot pushes the named files to the object store as multipart
// uploads, commits the collected ETags in part order, and marks the
// snapshot available.  Progress counts whole parts; the tail is counted at
// full part size, so the total slightly overshoots the byte count.
func (c *Client) UploadSnapshot(ctx context.Context, id types.SnapshotID, files []SnapshotFile, progress chan<- Progress) error {
	u := &snapshotUploader{c: c, partSize: partSize}
	return u.run(ctx, id, files, progress)
}

// snapshotUploader carries the part size so tests can shrink it.
type snapshotUploader struct {
	c        *Client
	partSize int64
}

func (u *snapshotUploader) run(ctx context.Context, id types.SnapshotID, files []SnapshotFile, progress chan<- Progress) error {
	if len(files) == 0 {
		return invalidParams("no files to upload")
	}
	keys := make([]types.UploadKey, 0, len(files))
	sizes := make([]int64, 0, len(files))
	var totalParts uint64
	for _, f := range files {
		fi, err := os.Stat(f.Path)
		if err != nil {
			return err
		}
		if fi.Size() == 0 {
			return invalidParams("empty file %q", f.Path)
		}
		keys = append(keys, types.UploadKey{Key: f.Key, Size: fi.Size()})
		sizes = append(sizes, fi.Size())
		totalParts += uint64(partCount(fi.Size(), u.partSize))
	}

	var targets []types.MultipartUploadTarget
	err := u.c.rpc(ctx, `snapshots.create_upload_url_multipart`,
		types.MultipartUploadParams{SnapshotID: id, Keys: keys}, &targets)
	if err != nil {
		return err
	}
	byKey := make(map[string]types.MultipartUploadTarget, len(targets))
	for _, t := range targets {
		byKey[t.Key] = t
	}

	pc := newProgressCounter(progress, totalParts*uint64(u.partSize))
	defer pc.close()

	for i, f := range files {
		target, ok := byKey[f.Key]
		if !ok {
			return invalidParams("server returned no upload target for key %q", f.Key)
		}
		n := partCount(sizes[i], u.partSize)
		if len(target.URLs) != n {
			return invalidParams("key %q: %d part urls for %d parts", f.Key, len(target.URLs), n)
		}
		parts, err := u.uploadParts(ctx, f.Path, sizes[i], target.URLs, pc)
		if err != nil {
			return err
		}
		err = u.c.rpc(ctx, `snapshots.complete_multipart_upload`, types.CompleteMultipartParams{
			SnapshotID: id,
			Key:        f.Key,
			UploadID:   target.UploadID,
			Parts:      parts,
		}, nil)
		if err != nil {
			return err
		}
	}
	return u.c.rpc(ctx, `snapshots.update`,
		types.SnapshotUpdateParams{SnapshotID: id, Status: `available`}, nil)
}

// uploadParts PUTs every part of one file under the bounded task pool and
// returns the ETags in ascending part number order.  Each slot is written
// only by its owning task; the errgroup join is the collection barrier.
func (u *snapshotUploader) uploadParts(ctx context.Context, path string, size int64, urls []string, pc *progressCounter) ([]types.CompletedPart, error) {
	n := partCount(size, u.partSize)
	parts := make([]types.CompletedPart, n)

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(maxTasks)
	for i := 0; i < n; i++ {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			etag, err := u.putPart(gctx, path, urls[i], int64(i)*u.partSize, partLength(size, u.partSize, i))
			if err != nil {
				return fmt.Errorf("part %d: %w", i+1, err)
			}
			parts[i] = types.CompletedPart{ETag: etag, PartNumber: i + 1}
			pc.add(uint64(u.partSize))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}

// putPart reads one part from disk and PUTs it to its presigned URL with
// an exact Content-Length, retrying with the file IO backoff policy.
func (u *snapshotUploader) putPart(ctx context.Context, path, uri string, off, length int64) (string, error) {
	fin, err := os.Open(path)
	if err != nil {
		return ``, err
	}
	buf := make([]byte, length)
	_, err = io.ReadFull(io.NewSectionReader(fin, off, length), buf)
	fin.Close()
	if err != nil {
		return ``, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, uri, bytes.NewReader(buf))
		if err != nil {
			return ``, err
		}
		req.ContentLength = length
		resp, err := u.c.objClnt.Do(req)
		if err == nil {
			if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
				etag := strings.Trim(resp.Header.Get(`ETag`), `"`)
				drainResponse(resp)
				if etag == `` {
					return ``, ErrInvalidEtag
				}
				return etag, nil
			}
			drainResponse(resp)
			lastErr = &HTTPError{Status: resp.StatusCode, URL: uri}
		} else {
			if ctx.Err() != nil {
				return ``, ctx.Err()
			}
			lastErr = err
		}
		if attempt < maxRetries {
			if berr := u.c.backoff(ctx, attempt, fileIO); berr != nil {
				return ``, berr
			}
		}
	}
	return ``, &MaxRetriesError{Attempts: maxRetries, Last: lastErr}
}

// partCount is ceil(size / partSize).
func partCount(size, partSize int64) int {
	return int((size + partSize - 1) / partSize)
}

// partLength returns the byte count of part i; only the final part may be
// short, and an exact multiple leaves it at full size.
func partLength(size, partSize int64, i int) int64 {
	remain := size - int64(i)*partSize
	if remain > partSize {
		return partSize
	}
	return remain
}
