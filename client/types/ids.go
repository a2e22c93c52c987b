/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package types holds the wire types exchanged with an EdgeFirst Studio
// server: typed resource identifiers, samples, annotations, labels, and
// the JSON-RPC envelope.
package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Every Studio resource identifier is rendered as <prefix>-<lowercase hex>.
// Each resource kind gets its own Go type so that a DatasetID cannot be
// handed to an API expecting a ProjectID.
const (
	orgPrefix      = `org`
	projectPrefix  = `p`
	datasetPrefix  = `ds`
	annSetPrefix   = `as`
	expPrefix      = `exp`
	trainerPrefix  = `t`
	validatePrefix = `v`
	taskPrefix     = `task`
	snapshotPrefix = `ss`
	samplePrefix   = `s`
	imagePrefix    = `im`
	sequencePrefix = `se`
	appPrefix      = `app`
)

var (
	ErrMissingIDPrefix = errors.New("identifier prefix missing or incorrect")
	ErrEmptyIDValue    = errors.New("identifier value is empty")
	ErrBadIDValue      = errors.New("identifier value is not hex")
)

func formatID(prefix string, v uint64) string {
	return prefix + `-` + strconv.FormatUint(v, 16)
}

func parseID(prefix, s string) (v uint64, err error) {
	var hx string
	var ok bool
	if hx, ok = strings.CutPrefix(s, prefix+`-`); !ok {
		err = fmt.Errorf("%w: want %q in %q", ErrMissingIDPrefix, prefix, s)
		return
	} else if len(hx) == 0 {
		err = fmt.Errorf("%w: %q", ErrEmptyIDValue, s)
		return
	}
	if v, err = strconv.ParseUint(hx, 16, 64); err != nil {
		err = fmt.Errorf("%w: %q", ErrBadIDValue, s)
	}
	return
}

// OrganizationID identifies an organization ("org-" prefix).
type OrganizationID uint64

func NewOrganizationID(v uint64) OrganizationID { return OrganizationID(v) }

func ParseOrganizationID(s string) (id OrganizationID, err error) {
	v, err := parseID(orgPrefix, s)
	return OrganizationID(v), err
}

func (id OrganizationID) Value() uint64  { return uint64(id) }
func (id OrganizationID) String() string { return formatID(orgPrefix, uint64(id)) }

func (id OrganizationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *OrganizationID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseOrganizationID(string(b))
	return
}

// ProjectID identifies a project ("p-" prefix).
type ProjectID uint64

func NewProjectID(v uint64) ProjectID { return ProjectID(v) }

func ParseProjectID(s string) (id ProjectID, err error) {
	v, err := parseID(projectPrefix, s)
	return ProjectID(v), err
}

func (id ProjectID) Value() uint64  { return uint64(id) }
func (id ProjectID) String() string { return formatID(projectPrefix, uint64(id)) }

func (id ProjectID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ProjectID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseProjectID(string(b))
	return
}

// DatasetID identifies a dataset ("ds-" prefix).
type DatasetID uint64

func NewDatasetID(v uint64) DatasetID { return DatasetID(v) }

func ParseDatasetID(s string) (id DatasetID, err error) {
	v, err := parseID(datasetPrefix, s)
	return DatasetID(v), err
}

func (id DatasetID) Value() uint64  { return uint64(id) }
func (id DatasetID) String() string { return formatID(datasetPrefix, uint64(id)) }

func (id DatasetID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *DatasetID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseDatasetID(string(b))
	return
}

// AnnotationSetID identifies an annotation set ("as-" prefix).
type AnnotationSetID uint64

func NewAnnotationSetID(v uint64) AnnotationSetID { return AnnotationSetID(v) }

func ParseAnnotationSetID(s string) (id AnnotationSetID, err error) {
	v, err := parseID(annSetPrefix, s)
	return AnnotationSetID(v), err
}

func (id AnnotationSetID) Value() uint64  { return uint64(id) }
func (id AnnotationSetID) String() string { return formatID(annSetPrefix, uint64(id)) }

func (id AnnotationSetID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *AnnotationSetID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseAnnotationSetID(string(b))
	return
}

// ExperimentID identifies an experiment ("exp-" prefix).
type ExperimentID uint64

func NewExperimentID(v uint64) ExperimentID { return ExperimentID(v) }

func ParseExperimentID(s string) (id ExperimentID, err error) {
	v, err := parseID(expPrefix, s)
	return ExperimentID(v), err
}

func (id ExperimentID) Value() uint64  { return uint64(id) }
func (id ExperimentID) String() string { return formatID(expPrefix, uint64(id)) }

func (id ExperimentID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ExperimentID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseExperimentID(string(b))
	return
}

// TrainingSessionID identifies a training session ("t-" prefix).
type TrainingSessionID uint64

func NewTrainingSessionID(v uint64) TrainingSessionID { return TrainingSessionID(v) }

func ParseTrainingSessionID(s string) (id TrainingSessionID, err error) {
	v, err := parseID(trainerPrefix, s)
	return TrainingSessionID(v), err
}

func (id TrainingSessionID) Value() uint64  { return uint64(id) }
func (id TrainingSessionID) String() string { return formatID(trainerPrefix, uint64(id)) }

func (id TrainingSessionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *TrainingSessionID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseTrainingSessionID(string(b))
	return
}

// ValidationSessionID identifies a validation session ("v-" prefix).
type ValidationSessionID uint64

func NewValidationSessionID(v uint64) ValidationSessionID { return ValidationSessionID(v) }

func ParseValidationSessionID(s string) (id ValidationSessionID, err error) {
	v, err := parseID(validatePrefix, s)
	return ValidationSessionID(v), err
}

func (id ValidationSessionID) Value() uint64  { return uint64(id) }
func (id ValidationSessionID) String() string { return formatID(validatePrefix, uint64(id)) }

func (id ValidationSessionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ValidationSessionID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseValidationSessionID(string(b))
	return
}

// TaskID identifies a task ("task-" prefix).
type TaskID uint64

func NewTaskID(v uint64) TaskID { return TaskID(v) }

func ParseTaskID(s string) (id TaskID, err error) {
	v, err := parseID(taskPrefix, s)
	return TaskID(v), err
}

func (id TaskID) Value() uint64  { return uint64(id) }
func (id TaskID) String() string { return formatID(taskPrefix, uint64(id)) }

func (id TaskID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *TaskID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseTaskID(string(b))
	return
}

// SnapshotID identifies a snapshot ("ss-" prefix).
type SnapshotID uint64

func NewSnapshotID(v uint64) SnapshotID { return SnapshotID(v) }

func ParseSnapshotID(s string) (id SnapshotID, err error) {
	v, err := parseID(snapshotPrefix, s)
	return SnapshotID(v), err
}

func (id SnapshotID) Value() uint64  { return uint64(id) }
func (id SnapshotID) String() string { return formatID(snapshotPrefix, uint64(id)) }

func (id SnapshotID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *SnapshotID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseSnapshotID(string(b))
	return
}

// SampleID identifies a sample ("s-" prefix).
type SampleID uint64

func NewSampleID(v uint64) SampleID { return SampleID(v) }

func ParseSampleID(s string) (id SampleID, err error) {
	v, err := parseID(samplePrefix, s)
	return SampleID(v), err
}

func (id SampleID) Value() uint64  { return uint64(id) }
func (id SampleID) String() string { return formatID(samplePrefix, uint64(id)) }

func (id SampleID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *SampleID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseSampleID(string(b))
	return
}

// ImageID identifies an image ("im-" prefix).
type ImageID uint64

func NewImageID(v uint64) ImageID { return ImageID(v) }

func ParseImageID(s string) (id ImageID, err error) {
	v, err := parseID(imagePrefix, s)
	return ImageID(v), err
}

func (id ImageID) Value() uint64  { return uint64(id) }
func (id ImageID) String() string { return formatID(imagePrefix, uint64(id)) }

func (id ImageID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ImageID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseImageID(string(b))
	return
}

// SequenceID identifies a sequence ("se-" prefix).
type SequenceID uint64

func NewSequenceID(v uint64) SequenceID { return SequenceID(v) }

func ParseSequenceID(s string) (id SequenceID, err error) {
	v, err := parseID(sequencePrefix, s)
	return SequenceID(v), err
}

func (id SequenceID) Value() uint64  { return uint64(id) }
func (id SequenceID) String() string { return formatID(sequencePrefix, uint64(id)) }

func (id SequenceID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *SequenceID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseSequenceID(string(b))
	return
}

// ApplicationID identifies an application ("app-" prefix).
type ApplicationID uint64

func NewApplicationID(v uint64) ApplicationID { return ApplicationID(v) }

func ParseApplicationID(s string) (id ApplicationID, err error) {
	v, err := parseID(appPrefix, s)
	return ApplicationID(v), err
}

func (id ApplicationID) Value() uint64  { return uint64(id) }
func (id ApplicationID) String() string { return formatID(appPrefix, uint64(id)) }

func (id ApplicationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ApplicationID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseApplicationID(string(b))
	return
}

// LabelID identifies a label row within a dataset.  Labels ride along with
// dataset APIs and are plain numeric on the wire, no prefix.
type LabelID uint64
