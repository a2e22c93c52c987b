/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package verify audits a COCO round trip: it matches annotations between
// the original and reconstructed documents with a minimum-cost assignment
// and accumulates geometry fidelity statistics.
package verify

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// solveAssignment runs Kuhn-Munkres minimum-cost assignment over a square
// cost matrix and returns the column assigned to each row.
func solveAssignment(cost *mat.Dense) []int {
	n, _ := cost.Dims()
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1)
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost.At(i0-1, j-1) - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	assign := make([]int, n)
	for j := 1; j <= n; j++ {
		if p[j] > 0 {
			assign[p[j]-1] = j - 1
		}
	}
	return assign
}

// padCost is the cost of matching against a padding slot, and also the
// per-pair ceiling: round((1-0)*10000).
const padCost = 10000

// buildCostMatrix quantizes (1-IoU) onto integers in a square matrix
// padded with the maximum cost so unequal counts still assign.
func buildCostMatrix(ious [][]float64) *mat.Dense {
	rows := len(ious)
	cols := 0
	if rows > 0 {
		cols = len(ious[0])
	}
	n := rows
	if cols > n {
		n = cols
	}
	if n == 0 {
		return nil
	}
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c := float64(padCost)
			if i < rows && j < cols {
				c = math.Round((1 - ious[i][j]) * padCost)
			}
			m.Set(i, j, c)
		}
	}
	return m
}
