/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package objlog

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"encoding/json"
)

var (
	errClosed = errors.New("logger is closed")
)

// JSONObjLogger appends each logged object to a file as indented JSON.
// Useful when debugging a server interaction; not intended for production
// traffic volumes.
type JSONObjLogger struct {
	mtx  sync.Mutex
	fout *os.File
}

// NewJSONLogger opens (or creates) the file at path in append mode and
// returns a logger that writes every record to it.
func NewJSONLogger(path string) (ObjLog, error) {
	fout, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0660)
	if err != nil {
		return nil, err
	}
	return &JSONObjLogger{fout: fout}, nil
}

// Log writes one record: the id, the RPC method, and the attached object.
func (jol *JSONObjLogger) Log(id, method string, obj interface{}) error {
	jol.mtx.Lock()
	defer jol.mtx.Unlock()
	if jol.fout == nil {
		return errClosed
	}
	b, err := json.MarshalIndent(obj, ``, "\t")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(jol.fout, "%s %s:\n%s\n", id, method, b)
	return err
}

// Close flushes and closes the underlying file; the logger must not be used
// afterwards.
func (jol *JSONObjLogger) Close() error {
	jol.mtx.Lock()
	defer jol.mtx.Unlock()
	if jol.fout == nil {
		return errClosed
	}
	err := jol.fout.Close()
	jol.fout = nil
	return err
}
