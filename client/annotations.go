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

	"github.com/EdgeFirstAI/client-sub000/client/types"
)

// AnnotationListOptions tunes ListAnnotations.
type AnnotationListOptions struct {
	// Groups filters to the named dataset splits; empty means all.
	Groups []string
	// Types filters to the named geometry kinds; empty means all.
	Types []types.AnnotationType
	// Progress receives one record per processed page; closed on return.
	Progress chan<- Progress
}

// ListAnnotations pulls every annotation in the set, denormalized so each
// record stands alone: sample identity fields are attached and the label
// index is joined in from the dataset label table.  Samples with no
// annotations contribute one empty annotation carrying only their identity,
// so they stay visible downstream.  Result order matches server page order.
func (c *Client) ListAnnotations(ctx context.Context, id types.AnnotationSetID, opts AnnotationListOptions) ([]types.Annotation, error) {
	set, err := c.GetAnnotationSet(ctx, id)
	if err != nil {
		return nil, err
	}
	labels, err := c.ListLabels(ctx, set.DatasetID)
	if err != nil {
		return nil, err
	}
	lt := types.NewLabelTable(labels)

	asid := id
	filter := types.SampleFilter{
		AnnotationSetID: &asid,
		Groups:          opts.Groups,
		AnnotationTypes: opts.Types,
	}
	total, err := c.CountSamples(ctx, filter)
	if err != nil {
		return nil, err
	}
	pc := newProgressCounter(opts.Progress, total)
	defer pc.close()
	if total == 0 {
		// nothing to page through; samples.list is never invoked
		return nil, nil
	}

	var out []types.Annotation
	err = c.eachSamplePage(ctx, filter, func(page []types.Sample) error {
		for i := range page {
			out = append(out, denormalizeSample(&page[i], lt)...)
		}
		pc.add(uint64(len(page)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// denormalizeSample attaches sample identity to each annotation and joins
// the label index; an annotation-less sample yields a single empty record.
func denormalizeSample(s *types.Sample, lt types.LabelTable) []types.Annotation {
	if len(s.Annotations) == 0 {
		return []types.Annotation{{
			SampleID:     s.ID,
			Name:         s.Name,
			Group:        s.Group,
			SequenceName: s.SequenceName,
			FrameNumber:  s.FrameNumber,
		}}
	}
	out := make([]types.Annotation, 0, len(s.Annotations))
	for _, a := range s.Annotations {
		a.SampleID = s.ID
		a.Name = s.Name
		a.Group = s.Group
		a.SequenceName = s.SequenceName
		if a.FrameNumber == nil {
			a.FrameNumber = s.FrameNumber
		}
		if a.LabelIndex == nil && a.Label != `` {
			if idx, ok := lt[a.Label]; ok {
				v := idx
				a.LabelIndex = &v
			}
		}
		out = append(out, a)
	}
	return out
}

// CountSamples returns how many samples match the filter.
func (c *Client) CountSamples(ctx context.Context, filter types.SampleFilter) (uint64, error) {
	var res types.SampleCountResult
	if err := c.rpc(ctx, `samples.count`, filter, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// ListSamplesPage fetches one page of samples; an empty continue token
// starts from the beginning.
func (c *Client) ListSamplesPage(ctx context.Context, params types.SampleListParams) (types.SampleListResult, error) {
	var res types.SampleListResult
	err := c.rpc(ctx, `samples.list`, params, &res)
	return res, err
}

// eachSamplePage drives the samples.list continuation loop, handing each
// page to fn in server order.  A null or empty continue token terminates.
func (c *Client) eachSamplePage(ctx context.Context, filter types.SampleFilter, fn func(page []types.Sample) error) error {
	params := types.SampleListParams{SampleFilter: filter}
	for {
		page, err := c.ListSamplesPage(ctx, params)
		if err != nil {
			return err
		}
		if err := fn(page.Samples); err != nil {
			return err
		}
		if page.ContinueToken == `` {
			return nil
		}
		params.ContinueToken = page.ContinueToken
	}
}
