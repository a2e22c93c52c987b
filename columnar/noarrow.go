/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

//go:build noarrow

package columnar

import (
	"github.com/EdgeFirstAI/client-sub000/client/types"
)

func WriteRows(path string, rows []Row) error {
	return ErrFeatureNotEnabled
}

func WriteLegacyRows(path string, rows []Row) error {
	return ErrFeatureNotEnabled
}

func WriteSamples(path string, samples []types.Sample) error {
	return ErrFeatureNotEnabled
}

func ReadRows(path string) ([]Row, error) {
	return nil, ErrFeatureNotEnabled
}

func ReadSamples(path string) ([]types.Sample, error) {
	return nil, ErrFeatureNotEnabled
}
