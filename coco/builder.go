/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package coco

// Builder assembles a dataset with monotonically increasing ids.  Adding
// a category is idempotent by name; images and annotations always get a
// fresh id.
type Builder struct {
	ds         Dataset
	nextImage  uint64
	nextAnn    uint64
	nextCat    uint32
	catsByName map[string]uint32
}

func NewBuilder() *Builder {
	return &Builder{catsByName: make(map[string]uint32)}
}

// SetInfo replaces the preamble block.
func (b *Builder) SetInfo(info Info) {
	b.ds.Info = &info
}

// AddCategory returns the id of the named category, allocating one on
// first sight.
func (b *Builder) AddCategory(name, supercategory string) uint32 {
	if id, ok := b.catsByName[name]; ok {
		return id
	}
	b.nextCat++
	id := b.nextCat
	b.catsByName[name] = id
	b.ds.Categories = append(b.ds.Categories, Category{
		ID:            id,
		Name:          name,
		Supercategory: supercategory,
	})
	return id
}

// AddImage appends an image and returns its allocated id.
func (b *Builder) AddImage(fileName string, width, height int) uint64 {
	b.nextImage++
	b.ds.Images = append(b.ds.Images, Image{
		ID:       b.nextImage,
		FileName: fileName,
		Width:    width,
		Height:   height,
	})
	return b.nextImage
}

// AddAnnotation appends an annotation and returns its allocated id.  The
// area defaults to the bbox area when the caller passes zero.
func (b *Builder) AddAnnotation(imageID uint64, categoryID uint32, bbox [4]float64, seg *Segmentation, area float64) uint64 {
	b.nextAnn++
	if area == 0 {
		area = bbox[2] * bbox[3]
	}
	b.ds.Annotations = append(b.ds.Annotations, Annotation{
		ID:           b.nextAnn,
		ImageID:      imageID,
		CategoryID:   categoryID,
		BBox:         bbox,
		Area:         area,
		Segmentation: seg,
	})
	return b.nextAnn
}

// Dataset returns the assembled document; the builder retains ownership
// for further additions.
func (b *Builder) Dataset() *Dataset {
	return &b.ds
}
