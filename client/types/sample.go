/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/google/uuid"
)

var (
	ErrInvalidFileType = errors.New("invalid sensor file type")
)

// FileType tags the payload of a sensor file attached to a sample.
type FileType string

const (
	FileTypeImage        FileType = `image`
	FileTypeLidarPCD     FileType = `lidar.pcd`
	FileTypeLidarDepth   FileType = `lidar.depth`
	FileTypeLidarReflect FileType = `lidar.reflect`
	FileTypeRadarPCD     FileType = `radar.pcd`
	FileTypeRadarPNG     FileType = `radar.png`
)

// extension table for non-image types; images are sniffed from their
// leading bytes at download time instead.
var fileTypeExts = map[FileType]string{
	FileTypeLidarPCD:     `pcd`,
	FileTypeLidarDepth:   `png`,
	FileTypeLidarReflect: `png`,
	FileTypeRadarPCD:     `pcd`,
	FileTypeRadarPNG:     `png`,
}

// ParseFileType validates a file type tag from the wire or from a caller.
func ParseFileType(s string) (ft FileType, err error) {
	switch FileType(s) {
	case FileTypeImage, FileTypeLidarPCD, FileTypeLidarDepth,
		FileTypeLidarReflect, FileTypeRadarPCD, FileTypeRadarPNG:
		ft = FileType(s)
	default:
		err = fmt.Errorf("%w: %q", ErrInvalidFileType, s)
	}
	return
}

// Ext returns the fixed file extension for the type, or empty for images
// which must be sniffed from content.
func (ft FileType) Ext() string {
	return fileTypeExts[ft]
}

// FilePayload is the one-of payload attached to a SampleFile: a presigned
// URL, legacy inline data carried on the wire, or in-memory bytes staged
// for upload.  Exactly one variant is populated at a time.
type FilePayload interface {
	isFilePayload()
}

// FileURL is a presigned HTTPS URL to the object store.
type FileURL string

// FileData is legacy inline data; it may be base64 of raw bytes, base64 of
// a JSON {type: content} wrapper, or a bare JSON-wrapped string.
type FileData string

// FileBytes is in-memory content staged for upload.
type FileBytes []byte

func (FileURL) isFilePayload()   {}
func (FileData) isFilePayload()  {}
func (FileBytes) isFilePayload() {}

// SampleFile is one typed sensor payload attached to a sample.
type SampleFile struct {
	Type    FileType
	Payload FilePayload
}

// URL returns the presigned URL and true when the payload is a URL.
func (sf SampleFile) URL() (string, bool) {
	u, ok := sf.Payload.(FileURL)
	return string(u), ok
}

// Data returns the inline data and true when the payload is inline.
func (sf SampleFile) Data() (string, bool) {
	d, ok := sf.Payload.(FileData)
	return string(d), ok
}

// Bytes returns staged upload content and true when the payload is staged.
func (sf SampleFile) Bytes() ([]byte, bool) {
	b, ok := sf.Payload.(FileBytes)
	return []byte(b), ok
}

// GPS is a WGS84 position attached to a sample.
type GPS struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IMU carries vehicle attitude in degrees.
type IMU struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Location groups the optional positioning sensors of a sample.
type Location struct {
	GPS *GPS `json:"gps,omitempty"`
	IMU *IMU `json:"imu,omitempty"`
}

// Sample is one captured frame with its sensor files and annotations.
type Sample struct {
	ID                  *SampleID
	UUID                uuid.UUID
	Name                string // logical image name stem, used for joins and file naming
	Group               string
	SequenceName        string
	SequenceUUID        uuid.UUID
	SequenceDescription string
	FrameNumber         *int64
	Width               *uint32
	Height              *uint32
	Date                string
	Source              string
	Degradation         string
	Location            *Location
	Files               []SampleFile
	Annotations         []Annotation
}

// File returns the first attached file of the given type.
func (s *Sample) File(ft FileType) (SampleFile, bool) {
	for _, f := range s.Files {
		if f.Type == ft {
			return f, true
		}
	}
	return SampleFile{}, false
}

type sampleWire struct {
	ID                  *SampleID       `json:"id,omitempty"`
	UUID                string          `json:"uuid,omitempty"`
	Name                string          `json:"image_name,omitempty"`
	Group               string          `json:"group,omitempty"`
	GroupName           string          `json:"group_name,omitempty"`
	SequenceName        string          `json:"sequence_name,omitempty"`
	SequenceUUID        string          `json:"sequence_uuid,omitempty"`
	SequenceDescription string          `json:"sequence_description,omitempty"`
	FrameNumber         *int64          `json:"frame_number,omitempty"`
	Width               *uint32         `json:"width,omitempty"`
	Height              *uint32         `json:"height,omitempty"`
	Date                string          `json:"date,omitempty"`
	Source              string          `json:"source,omitempty"`
	Degradation         string          `json:"degradation,omitempty"`
	Sensors             json.RawMessage `json:"sensors,omitempty"`
	Annotations         []Annotation    `json:"annotations,omitempty"`
}

// UnmarshalJSON absorbs the wire quirks of older servers so callers never
// see them: group vs group_name, the -1 frame sentinel, and the
// heterogeneous sensors field.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var w sampleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Sample{
		ID:                  w.ID,
		Name:                w.Name,
		Group:               w.Group,
		SequenceName:        w.SequenceName,
		SequenceDescription: w.SequenceDescription,
		FrameNumber:         w.FrameNumber,
		Width:               w.Width,
		Height:              w.Height,
		Date:                w.Date,
		Source:              w.Source,
		Degradation:         w.Degradation,
		Annotations:         w.Annotations,
	}
	if s.Group == `` {
		s.Group = w.GroupName
	}
	if w.FrameNumber != nil && *w.FrameNumber < 0 {
		s.FrameNumber = nil
	}
	if w.UUID != `` {
		if u, err := uuid.Parse(w.UUID); err == nil {
			s.UUID = u
		}
	}
	if w.SequenceUUID != `` {
		if u, err := uuid.Parse(w.SequenceUUID); err == nil {
			s.SequenceUUID = u
		}
	}
	if len(w.Sensors) > 0 {
		files, loc, err := parseSensors(w.Sensors)
		if err != nil {
			return err
		}
		s.Files = files
		s.Location = loc
	}
	return nil
}

// parseSensors normalizes the sensors field into files plus an optional
// location.  The field may be an object or an array of objects; the gps and
// imu keys carry Location data and every other key is a sensor file whose
// value is either a URL string, inline data, or a JSON value to be carried
// as inline data.
func parseSensors(raw json.RawMessage) (files []SampleFile, loc *Location, err error) {
	handle := func(key []byte, value []byte, dt jsonparser.ValueType) error {
		switch string(key) {
		case `gps`:
			var g GPS
			if err := json.Unmarshal(value, &g); err != nil {
				return err
			}
			if loc == nil {
				loc = &Location{}
			}
			loc.GPS = &g
			return nil
		case `imu`:
			var m IMU
			if err := json.Unmarshal(value, &m); err != nil {
				return err
			}
			if loc == nil {
				loc = &Location{}
			}
			loc.IMU = &m
			return nil
		}
		ft, err := ParseFileType(string(key))
		if err != nil {
			return err
		}
		var payload FilePayload
		switch dt {
		case jsonparser.String:
			sv, err := jsonparser.ParseString(value)
			if err != nil {
				return err
			}
			if strings.HasPrefix(sv, `http://`) || strings.HasPrefix(sv, `https://`) {
				payload = FileURL(sv)
			} else {
				payload = FileData(sv)
			}
		case jsonparser.Object, jsonparser.Array:
			// legacy datasets stuff JSON documents into the sensor slot;
			// carry them as inline data serialized back to a string
			payload = FileData(value)
		default:
			return fmt.Errorf("unexpected sensor value for %q", key)
		}
		files = append(files, SampleFile{Type: ft, Payload: payload})
		return nil
	}

	switch value := bytesTrimLeft(raw); {
	case len(value) == 0:
		return
	case value[0] == '{':
		err = jsonparser.ObjectEach(raw, func(key, val []byte, dt jsonparser.ValueType, _ int) error {
			return handle(key, val, dt)
		})
	case value[0] == '[':
		_, err = jsonparser.ArrayEach(raw, func(elem []byte, dt jsonparser.ValueType, _ int, cbErr error) {
			if err != nil || cbErr != nil {
				return
			}
			if dt != jsonparser.Object {
				err = errors.New("sensor array element is not an object")
				return
			}
			err = jsonparser.ObjectEach(elem, func(key, val []byte, vdt jsonparser.ValueType, _ int) error {
				return handle(key, val, vdt)
			})
		})
	default:
		err = errors.New("sensors field is neither object nor array")
	}
	return
}

func bytesTrimLeft(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t' || b[0] == '\n' || b[0] == '\r') {
		b = b[1:]
	}
	return b
}

// MarshalJSON emits the upload form of a sample: empty optional fields are
// omitted and files are rendered back into the sensors object.  Staged
// in-memory payloads are not serialized here; they ride as multipart file
// parts next to the sample record.
func (s Sample) MarshalJSON() ([]byte, error) {
	w := sampleWire{
		ID:                  s.ID,
		Name:                s.Name,
		Group:               s.Group,
		SequenceName:        s.SequenceName,
		SequenceDescription: s.SequenceDescription,
		FrameNumber:         s.FrameNumber,
		Width:               s.Width,
		Height:              s.Height,
		Date:                s.Date,
		Source:              s.Source,
		Degradation:         s.Degradation,
		Annotations:         s.Annotations,
	}
	if s.UUID != uuid.Nil {
		w.UUID = s.UUID.String()
	}
	if s.SequenceUUID != uuid.Nil {
		w.SequenceUUID = s.SequenceUUID.String()
	}
	sensors := make(map[string]any)
	if s.Location != nil {
		if s.Location.GPS != nil {
			sensors[`gps`] = s.Location.GPS
		}
		if s.Location.IMU != nil {
			sensors[`imu`] = s.Location.IMU
		}
	}
	for _, f := range s.Files {
		switch p := f.Payload.(type) {
		case FileURL:
			sensors[string(f.Type)] = string(p)
		case FileData:
			sensors[string(f.Type)] = string(p)
		}
	}
	if len(sensors) > 0 {
		b, err := json.Marshal(sensors)
		if err != nil {
			return nil, err
		}
		w.Sensors = b
	}
	return json.Marshal(w)
}
