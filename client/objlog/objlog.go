/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package objlog provides the request/response object logger the client
// accepts at construction.  The client never logs implicitly; callers that
// want a trace of RPC traffic inject an implementation here.
package objlog

// ObjLog receives every RPC method invocation and its request or response
// object.  Implementations must be safe for concurrent use.
type ObjLog interface {
	Log(id, method string, obj interface{}) error
	Close() error
}

// NilObjLogger discards everything; it is the default when no logger is
// provided.
type NilObjLogger struct{}

// NewNilLogger returns a do-nothing ObjLog.
func NewNilLogger() (ObjLog, error) {
	return &NilObjLogger{}, nil
}

// Log discards the record.
func (nol *NilObjLogger) Log(id, method string, obj interface{}) error {
	return nil
}

// Close does nothing.
func (nol *NilObjLogger) Close() error {
	return nil
}
