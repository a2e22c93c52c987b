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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/EdgeFirstAI/client-sub000/client/types"

	"github.com/h2non/filetype"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// maxTasks bounds per-sample download and per-part upload concurrency.
const maxTasks = 32

// DownloadOptions tunes DownloadDataset.
type DownloadOptions struct {
	// Groups filters to the named dataset splits; empty means all.
	Groups []string
	// Types selects which sensor files to fetch; defaults to images only.
	Types []types.FileType
	// Progress receives one record per completed sample; the channel is
	// closed when the download finishes.
	Progress chan<- Progress
}

// DownloadDataset fetches the requested sensor files for every sample in
// the dataset into outDir, named <sample name>.<ext>.  Sample fetches run
// under a bounded task pool; the first failure cancels the rest.
func (c *Client) DownloadDataset(ctx context.Context, id types.DatasetID, outDir string, opts DownloadOptions) error {
	if outDir == `` {
		return invalidParams("empty output directory")
	}
	ftypes := opts.Types
	if len(ftypes) == 0 {
		ftypes = []types.FileType{types.FileTypeImage}
	}
	dsid := id
	filter := types.SampleFilter{DatasetID: &dsid, Groups: opts.Groups}
	var samples []types.Sample
	err := c.eachSamplePage(ctx, filter, func(page []types.Sample) error {
		samples = append(samples, page...)
		return nil
	})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	pc := newProgressCounter(opts.Progress, uint64(len(samples)))
	defer pc.close()

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(maxTasks)
	for i := range samples {
		s := &samples[i]
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			if err := c.downloadSample(gctx, s, ftypes, outDir); err != nil {
				return err
			}
			pc.add(1)
			return nil
		})
	}
	return g.Wait()
}

func (c *Client) downloadSample(ctx context.Context, s *types.Sample, ftypes []types.FileType, outDir string) error {
	name := s.Name
	if name == `` {
		name = s.UUID.String()
	}
	for _, ft := range ftypes {
		sf, ok := s.File(ft)
		if !ok {
			continue
		}
		data, err := c.resolvePayload(ctx, sf)
		if err != nil {
			return fmt.Errorf("sample %s: %w", name, err)
		}
		ext := ft.Ext()
		if ft == types.FileTypeImage {
			if ext = sniffImageExt(data); ext == `` {
				return fmt.Errorf("sample %s: %w", name, ErrUnsupportedFormat)
			}
		}
		if err := os.WriteFile(filepath.Join(outDir, name+`.`+ext), data, 0644); err != nil {
			return err
		}
	}
	return nil
}

// resolvePayload turns any of the three payload variants into bytes.
func (c *Client) resolvePayload(ctx context.Context, sf types.SampleFile) ([]byte, error) {
	switch p := sf.Payload.(type) {
	case types.FileURL:
		return c.getObject(ctx, string(p))
	case types.FileData:
		return decodeInlineData(string(p)), nil
	case types.FileBytes:
		return []byte(p), nil
	}
	return nil, invalidParams("sample file has no payload")
}

// decodeInlineData unpacks legacy inline payloads: base64 of a JSON
// {type: content} wrapper, base64 of raw bytes, or a plain string.
func decodeInlineData(data string) []byte {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return []byte(data)
	}
	if utf8.Valid(raw) {
		if t := bytesTrimLeft(raw); len(t) > 0 && t[0] == '{' {
			var wrap map[string]string
			if err := json.Unmarshal(raw, &wrap); err == nil {
				for _, v := range wrap {
					return []byte(v)
				}
			}
		}
	}
	return raw
}

func bytesTrimLeft(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t' || b[0] == '\n' || b[0] == '\r') {
		b = b[1:]
	}
	return b
}

// sniffImageExt infers the on-disk extension from the leading bytes.
func sniffImageExt(data []byte) string {
	t, err := filetype.Match(data)
	if err != nil || t == filetype.Unknown {
		return ``
	}
	return t.Extension
}

// getObject GETs a presigned object store URL on the unauthenticated
// client, retrying with the file IO backoff policy.
func (c *Client) getObject(ctx context.Context, uri string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.objClnt.Do(req)
		if err == nil {
			if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
				b, rerr := io.ReadAll(resp.Body)
				resp.Body.Close()
				if rerr == nil {
					return b, nil
				}
				lastErr = rerr
			} else {
				drainResponse(resp)
				lastErr = &HTTPError{Status: resp.StatusCode, URL: uri}
			}
		} else {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		}
		if attempt < maxRetries {
			if berr := c.backoff(ctx, attempt, fileIO); berr != nil {
				return nil, berr
			}
		}
	}
	return nil, &MaxRetriesError{Attempts: maxRetries, Last: lastErr}
}
