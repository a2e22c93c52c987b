/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package coco

// Bitmap is a dense binary mask decoded from an RLE segmentation.
type Bitmap struct {
	W, H int
	Pix  []uint8
}

func (b *Bitmap) at(x, y int) bool {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return false
	}
	return b.Pix[y*b.W+x] != 0
}

// Decode expands the run counts into a bitmap.  Runs are column-major and
// alternate background, foreground, starting with background.
func (r *RLE) Decode() (*Bitmap, error) {
	h, w := r.Size[0], r.Size[1]
	if h < 0 || w < 0 {
		return nil, cocoErrorf("bad RLE size %dx%d", h, w)
	}
	bm := &Bitmap{W: w, H: h, Pix: make([]uint8, w*h)}
	pos := 0
	val := uint8(0)
	for _, c := range r.Counts {
		n := int(c)
		if pos+n > w*h {
			return nil, cocoErrorf("RLE counts overflow %dx%d mask", h, w)
		}
		if val != 0 {
			for i := 0; i < n; i++ {
				// column-major: linear index pos runs down columns
				p := pos + i
				bm.Pix[(p%h)*w+p/h] = 1
			}
		}
		pos += n
		val ^= 1
	}
	return bm, nil
}

// Decode unpacks the char-packed counts and expands them like plain RLE.
func (c *CompressedRLE) Decode() (*Bitmap, error) {
	counts, err := DecodeCompressedCounts(c.Counts)
	if err != nil {
		return nil, err
	}
	r := RLE{Size: c.Size, Counts: counts}
	return r.Decode()
}

// DecodeCompressedCounts unpacks the compact counts string: each count is
// little-endian base-32 in printable chars offset by 48, five data bits
// and one continuation bit per char, sign-extended on the final chunk,
// with counts after the third delta-encoded against the value two back.
func DecodeCompressedCounts(s string) ([]uint32, error) {
	var counts []uint32
	p := 0
	for p < len(s) {
		var x int64
		k := 0
		more := true
		for more {
			if p >= len(s) {
				return nil, cocoErrorf("truncated compressed RLE counts")
			}
			c := int64(s[p]) - 48
			if c < 0 || c > 63 {
				return nil, cocoErrorf("bad compressed RLE char %q", s[p])
			}
			x |= (c & 0x1f) << (5 * k)
			more = c&0x20 != 0
			p++
			if !more && c&0x10 != 0 {
				x |= int64(-1) << (5 * (k + 1))
			}
			k++
		}
		if len(counts) > 2 {
			x += int64(counts[len(counts)-2])
		}
		if x < 0 {
			return nil, cocoErrorf("negative compressed RLE count %d", x)
		}
		counts = append(counts, uint32(x))
	}
	return counts, nil
}

// BBox returns the pixel bounding box of the foreground, and false when
// the mask has zero area.
func (b *Bitmap) BBox() ([4]float64, bool) {
	minX, minY := b.W, b.H
	maxX, maxY := -1, -1
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.Pix[y*b.W+x] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if y < minY {
				minY = y
			}
			if x > maxX {
				maxX = x
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return [4]float64{}, false
	}
	return [4]float64{
		float64(minX), float64(minY),
		float64(maxX - minX + 1), float64(maxY - minY + 1),
	}, true
}

// Area counts foreground pixels.
func (b *Bitmap) Area() int {
	n := 0
	for _, p := range b.Pix {
		if p != 0 {
			n++
		}
	}
	return n
}

// Contours traces the outer boundary of every connected component and
// returns one flat x,y polygon per component in pixel coordinates.
func (b *Bitmap) Contours() [][]float64 {
	visited := make([]bool, len(b.Pix))
	var out [][]float64
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.Pix[y*b.W+x] == 0 || visited[y*b.W+x] {
				continue
			}
			ring := b.traceBoundary(x, y)
			b.markComponent(x, y, visited)
			if len(ring) >= 6 {
				out = append(out, ring)
			}
		}
	}
	return out
}

// mooreOffsets is the clockwise neighbor order used by boundary tracing,
// starting west.
var mooreOffsets = [8][2]int{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

func offsetIndex(dx, dy int) int {
	for i, d := range mooreOffsets {
		if d[0] == dx && d[1] == dy {
			return i
		}
	}
	return 0
}

// traceBoundary walks the component edge with Moore neighbor tracing from
// the top-left pixel, stopping when it re-enters the start pixel from the
// same background cell it originally entered over.
func (b *Bitmap) traceBoundary(sx, sy int) []float64 {
	ring := []float64{float64(sx), float64(sy)}
	px, py := sx, sy
	// scan order guarantees the west neighbor of the start is background
	bx, by := sx-1, sy
	sbx, sby := bx, by
	for step := 0; step < 4*len(b.Pix)+8; step++ {
		start := offsetIndex(bx-px, by-py)
		found := -1
		for i := 1; i <= 8; i++ {
			j := (start + i) % 8
			nx, ny := px+mooreOffsets[j][0], py+mooreOffsets[j][1]
			if b.at(nx, ny) {
				found = j
				break
			}
			bx, by = nx, ny
		}
		if found < 0 {
			// isolated pixel
			return ring
		}
		d := mooreOffsets[found]
		px, py = px+d[0], py+d[1]
		if px == sx && py == sy && bx == sbx && by == sby {
			return ring
		}
		ring = append(ring, float64(px), float64(py))
	}
	return ring
}

// markComponent flood fills the 8-connected component so each one is
// traced once.
func (b *Bitmap) markComponent(sx, sy int, visited []bool) {
	stack := [][2]int{{sx, sy}}
	visited[sy*b.W+sx] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range mooreOffsets {
			x, y := p[0]+d[0], p[1]+d[1]
			if !b.at(x, y) || visited[y*b.W+x] {
				continue
			}
			visited[y*b.W+x] = true
			stack = append(stack, [2]int{x, y})
		}
	}
}
