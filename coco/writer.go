/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package coco

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zip"
)

// annotationsEntry is where the document lives inside an archive.
const annotationsEntry = `annotations/instances.json`

// WriteJSON writes the document to disk, optionally indented.
func WriteJSON(d *Dataset, pth string, pretty bool) error {
	fout, err := os.Create(pth)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(fout)
	enc := json.NewEncoder(bw)
	if pretty {
		enc.SetIndent(``, `  `)
	}
	if err := enc.Encode(d); err != nil {
		fout.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		fout.Close()
		return err
	}
	return fout.Close()
}

// ZipImage is one image entry to embed in an archive.
type ZipImage struct {
	Path   string
	Reader io.Reader
}

// WriteZip writes an archive holding annotations/instances.json plus the
// supplied image entries at their archive paths.
func WriteZip(d *Dataset, images []ZipImage, pth string) error {
	fout, err := os.Create(pth)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(fout)

	w, err := zw.Create(annotationsEntry)
	if err != nil {
		zw.Close()
		fout.Close()
		return err
	}
	if err := json.NewEncoder(w).Encode(d); err != nil {
		zw.Close()
		fout.Close()
		return err
	}
	for _, im := range images {
		w, err := zw.Create(im.Path)
		if err != nil {
			zw.Close()
			fout.Close()
			return err
		}
		if _, err := io.Copy(w, im.Reader); err != nil {
			zw.Close()
			fout.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		fout.Close()
		return err
	}
	return fout.Close()
}

// SplitByGroup partitions the dataset by the parallel per-image group
// array and writes one document per group at
// <outDir>/<group>/annotations/instances_<group>.json.  When imagesDir is
// non-empty each group also gets an images/ subtree populated from the
// source files.  A length mismatch between groups and images is fatal.
func SplitByGroup(d *Dataset, groups []string, imagesDir, outDir string) error {
	if len(groups) != len(d.Images) {
		return cocoErrorf("%d group names for %d images", len(groups), len(d.Images))
	}

	imagesByGroup := make(map[string][]Image)
	groupByImageID := make(map[uint64]string, len(d.Images))
	for i, im := range d.Images {
		g := groups[i]
		imagesByGroup[g] = append(imagesByGroup[g], im)
		groupByImageID[im.ID] = g
	}
	annsByGroup := make(map[string][]Annotation)
	for _, a := range d.Annotations {
		g := groupByImageID[a.ImageID]
		annsByGroup[g] = append(annsByGroup[g], a)
	}

	for g, imgs := range imagesByGroup {
		part := &Dataset{
			Info:        d.Info,
			Licenses:    d.Licenses,
			Images:      imgs,
			Categories:  d.Categories,
			Annotations: annsByGroup[g],
		}
		annDir := filepath.Join(outDir, g, `annotations`)
		if err := os.MkdirAll(annDir, 0755); err != nil {
			return err
		}
		pth := filepath.Join(annDir, `instances_`+g+`.json`)
		if err := WriteJSON(part, pth, false); err != nil {
			return err
		}
		if imagesDir == `` {
			continue
		}
		if err := copyGroupImages(imgs, imagesDir, filepath.Join(outDir, g, `images`)); err != nil {
			return err
		}
	}
	return nil
}

func copyGroupImages(imgs []Image, srcDir, dstDir string) error {
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return err
	}
	var missing []string
	for _, im := range imgs {
		src := filepath.Join(srcDir, im.FileName)
		b, err := os.ReadFile(src)
		if err != nil {
			if os.IsNotExist(err) {
				missing = append(missing, im.FileName)
				continue
			}
			return err
		}
		if err := os.WriteFile(filepath.Join(dstDir, filepath.Base(im.FileName)), b, 0644); err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return &MissingImagesError{Names: missing, Searched: []string{srcDir}}
	}
	return nil
}
