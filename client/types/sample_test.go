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
	"testing"
)

func TestSampleGroupNameFallback(t *testing.T) {
	var s Sample
	if err := json.Unmarshal([]byte(`{"image_name":"a","group_name":"train"}`), &s); err != nil {
		t.Fatal(err)
	}
	if s.Group != `train` {
		t.Fatalf("group %q", s.Group)
	}
	// modern key wins when both are present
	if err := json.Unmarshal([]byte(`{"group":"val","group_name":"train"}`), &s); err != nil {
		t.Fatal(err)
	}
	if s.Group != `val` {
		t.Fatalf("group %q, want val", s.Group)
	}
}

func TestSampleFrameSentinel(t *testing.T) {
	var s Sample
	if err := json.Unmarshal([]byte(`{"frame_number":-1}`), &s); err != nil {
		t.Fatal(err)
	}
	if s.FrameNumber != nil {
		t.Fatalf("frame %v, want absent", *s.FrameNumber)
	}
	if err := json.Unmarshal([]byte(`{"frame_number":7}`), &s); err != nil {
		t.Fatal(err)
	}
	if s.FrameNumber == nil || *s.FrameNumber != 7 {
		t.Fatal("frame 7 not preserved")
	}
}

func TestSampleSensors(t *testing.T) {
	raw := `{
		"image_name": "frame_0001",
		"sensors": {
			"gps": {"lat": 45.5, "lon": -73.6},
			"imu": {"roll": 1, "pitch": 2, "yaw": 3},
			"image": "https://cdn.example.com/frame_0001.jpg",
			"lidar.pcd": "aGVsbG8=",
			"radar.pcd": {"points": [1, 2, 3]}
		}
	}`
	var s Sample
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatal(err)
	}
	if s.Location == nil || s.Location.GPS == nil || s.Location.IMU == nil {
		t.Fatal("location not populated")
	}
	if s.Location.GPS.Lat != 45.5 || s.Location.GPS.Lon != -73.6 {
		t.Fatalf("gps %+v", s.Location.GPS)
	}
	if len(s.Files) != 3 {
		t.Fatalf("got %d files", len(s.Files))
	}

	img, ok := s.File(FileTypeImage)
	if !ok {
		t.Fatal("no image file")
	}
	if u, ok := img.URL(); !ok || u != `https://cdn.example.com/frame_0001.jpg` {
		t.Fatalf("image payload %v", img.Payload)
	}

	lidar, _ := s.File(FileTypeLidarPCD)
	if d, ok := lidar.Data(); !ok || d != `aGVsbG8=` {
		t.Fatalf("lidar payload %v", lidar.Payload)
	}

	// object values ride as inline JSON
	radar, _ := s.File(FileTypeRadarPCD)
	if d, ok := radar.Data(); !ok || d != `{"points": [1, 2, 3]}` {
		t.Fatalf("radar payload %v", radar.Payload)
	}
}

func TestSampleSensorsArray(t *testing.T) {
	raw := `{"sensors": [{"image": "https://x/y.png"}, {"lidar.pcd": "data"}]}`
	var s Sample
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatal(err)
	}
	if len(s.Files) != 2 {
		t.Fatalf("got %d files", len(s.Files))
	}
}

func TestSampleSensorsUnknownType(t *testing.T) {
	var s Sample
	err := json.Unmarshal([]byte(`{"sensors": {"sonar": "x"}}`), &s)
	if err == nil {
		t.Fatal("unknown sensor type accepted")
	}
}

func TestSampleMarshalOmitsEmpty(t *testing.T) {
	b, err := json.Marshal(Sample{Name: `a`})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"image_name":"a"}` {
		t.Fatalf("got %s", b)
	}
}

func TestSampleMarshalSensors(t *testing.T) {
	s := Sample{
		Name: `a`,
		Files: []SampleFile{
			{Type: FileTypeImage, Payload: FileURL(`https://x/a.png`)},
			{Type: FileTypeLidarPCD, Payload: FileBytes(`staged`)},
		},
		Location: &Location{GPS: &GPS{Lat: 1, Lon: 2}},
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var back Sample
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if _, ok := back.File(FileTypeImage); !ok {
		t.Fatal("image file lost")
	}
	// staged bytes ride as multipart parts, never in the record
	if _, ok := back.File(FileTypeLidarPCD); ok {
		t.Fatal("staged payload serialized")
	}
	if back.Location == nil || back.Location.GPS == nil || back.Location.GPS.Lat != 1 {
		t.Fatal("gps lost")
	}
}

func TestParseFileType(t *testing.T) {
	if _, err := ParseFileType(`image`); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseFileType(`sonar`); err == nil {
		t.Fatal("sonar accepted")
	}
}
