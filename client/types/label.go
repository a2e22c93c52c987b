/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package types

// Label names an object class within a dataset.  The (dataset, name) pair
// is unique per dataset; Index is the dense model emission index and is
// distinct from the row id.
type Label struct {
	ID        LabelID   `json:"id"`
	DatasetID DatasetID `json:"dataset_id"`
	Index     uint64    `json:"index"`
	Name      string    `json:"name"`
}

// LabelTable resolves label names to their dense indices.
type LabelTable map[string]uint64

// NewLabelTable builds the name to index lookup used when denormalizing
// annotations.
func NewLabelTable(labels []Label) LabelTable {
	lt := make(LabelTable, len(labels))
	for _, l := range labels {
		lt[l.Name] = l.Index
	}
	return lt
}
