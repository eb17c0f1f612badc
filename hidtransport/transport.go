// Copyright (C) 2018 Rob Caelers <rob.caelers@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package hidtransport exposes the four blocking HID primitives the DFU
// protocol engine is built on, as an interface so it can be driven by a
// mock in tests, the same way the teacher's ble.Client/Peripheral let
// dfu.Dfu be driven without a real radio.
package hidtransport

import "errors"

// Report IDs observed in vendor traffic, per the protocol's §4.B table.
const (
	ReportDetachInfo = 0x01 // DETACH / vendor INFO, feature
	ReportDnloadData = 0x02 // DNLOAD data, output
	ReportUploadData = 0x03 // UPLOAD data, input (not exposed to users)
	ReportControl    = 0x04 // GET_STATUS / GET_STATE / CLR_STATUS / ABORT, feature
	ReportDeviceInfo = 0x05 // device info string, feature read
)

// ErrTimeout is returned by ReadInput when no input report arrives within
// the given timeout.
var ErrTimeout = errors.New("hidtransport: read timed out")

// Transport is the capability the protocol layer consumes. A device handle
// is opened for the duration of one top-level operation and closed on all
// exit paths; Close is idempotent-safe to call from a defer.
type Transport interface {
	// WriteFeature sends a feature report with the given report ID and
	// payload, blocking until the platform acknowledges or errors.
	WriteFeature(reportID byte, payload []byte) error

	// ReadFeature reads a feature report with the given report ID into
	// buf, returning the number of bytes read (excluding the report ID).
	ReadFeature(reportID byte, buf []byte) (int, error)

	// WriteOutput sends an output report with the given report ID and
	// payload, used for DNLOAD data blocks.
	WriteOutput(reportID byte, payload []byte) error

	// ReadInput reads an input report into buf with the given timeout in
	// milliseconds, returning ErrTimeout if none arrives in time.
	ReadInput(buf []byte, timeoutMs int) (int, error)

	// Close releases the underlying device handle.
	Close() error
}
