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

// Package xerrors holds the typed error values the core surfaces, each
// carrying the exit code the top-level command should report for it.
package xerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Exit codes, per the CLI surface's contract.
const (
	ExitOK             = 0
	ExitUserError      = 1
	ExitDeviceError    = 2
	ExitUntestedDevice = 3
)

// Coded is implemented by every error kind this package defines.
type Coded interface {
	error
	ExitCode() int
}

// ExitCodeFor walks err (via errors.Cause) looking for a Coded error and
// returns its exit code, or ExitUserError if none is found.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	if c, ok := errors.Cause(err).(Coded); ok {
		return c.ExitCode()
	}
	return ExitUserError
}

// --- file errors -----------------------------------------------------------

type SuffixTooShort struct {
	Length int
}

func (e *SuffixTooShort) Error() string {
	return fmt.Sprintf("firmware file too short for a DFU suffix (%d bytes)", e.Length)
}
func (e *SuffixTooShort) ExitCode() int { return ExitUserError }

type BadSignature struct {
	Got [3]byte
}

func (e *BadSignature) Error() string {
	return fmt.Sprintf("bad DFU suffix signature: got %q, want \"UFD\"", e.Got[:])
}
func (e *BadSignature) ExitCode() int { return ExitUserError }

type BadCRC struct {
	Expected, Computed uint32
}

func (e *BadCRC) Error() string {
	return fmt.Sprintf("DFU suffix CRC mismatch: file says %#08x, computed %#08x", e.Expected, e.Computed)
}
func (e *BadCRC) ExitCode() int { return ExitUserError }

type UnsupportedDFUVersion struct {
	Got uint16
}

func (e *UnsupportedDFUVersion) Error() string {
	return fmt.Sprintf("unsupported bcdDFU %#04x, want 0x0100", e.Got)
}
func (e *UnsupportedDFUVersion) ExitCode() int { return ExitUserError }

type MismatchedDeviceIDs struct {
	ImageVID, ImagePID   uint16
	DeviceVID, DevicePID uint16
}

func (e *MismatchedDeviceIDs) Error() string {
	return fmt.Sprintf("firmware targets %04x:%04x, device is %04x:%04x",
		e.ImageVID, e.ImagePID, e.DeviceVID, e.DevicePID)
}
func (e *MismatchedDeviceIDs) ExitCode() int { return ExitUserError }

type ImageTooLarge struct {
	Blocks int
}

func (e *ImageTooLarge) Error() string {
	return fmt.Sprintf("image requires %d DNLOAD blocks, more than the 16-bit block counter allows", e.Blocks)
}
func (e *ImageTooLarge) ExitCode() int { return ExitUserError }

// --- transport errors --------------------------------------------------------

type DeviceNotFound struct {
	Detail string
}

func (e *DeviceNotFound) Error() string { return "no matching device found: " + e.Detail }
func (e *DeviceNotFound) ExitCode() int { return ExitDeviceError }

type AmbiguousSelection struct {
	Count int
}

func (e *AmbiguousSelection) Error() string {
	return fmt.Sprintf("%d devices match the given selectors, narrow with -p/-s", e.Count)
}
func (e *AmbiguousSelection) ExitCode() int { return ExitDeviceError }

type AccessDenied struct {
	Path string
}

func (e *AccessDenied) Error() string { return "access denied opening " + e.Path }
func (e *AccessDenied) ExitCode() int { return ExitDeviceError }

type TransportLost struct {
	Detail string
}

func (e *TransportLost) Error() string { return "lost the device mid-operation: " + e.Detail }
func (e *TransportLost) ExitCode() int { return ExitDeviceError }

type HidError struct {
	Message string
}

func (e *HidError) Error() string { return "hid error: " + e.Message }
func (e *HidError) ExitCode() int { return ExitDeviceError }

// --- protocol errors ---------------------------------------------------------

// UnexpectedState is raised when a GET_STATUS response reports a state that
// is not a legal successor of the host's expected state.
type UnexpectedState struct {
	Expected, Got string
}

func (e *UnexpectedState) Error() string {
	return fmt.Sprintf("unexpected device state: expected %s, got %s", e.Expected, e.Got)
}
func (e *UnexpectedState) ExitCode() int { return ExitDeviceError }

// DeviceError wraps a non-OK DFU status code reported by the device.
type DeviceError struct {
	StatusCode  byte
	StringIndex byte
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device reported DFU error status %#02x (string index %d)", e.StatusCode, e.StringIndex)
}
func (e *DeviceError) ExitCode() int { return ExitDeviceError }

type BadResponseLength struct {
	Want, Got int
}

func (e *BadResponseLength) Error() string {
	return fmt.Sprintf("bad response length: want %d bytes, got %d", e.Want, e.Got)
}
func (e *BadResponseLength) ExitCode() int { return ExitDeviceError }

// --- policy errors ------------------------------------------------------------

type UntestedDevice struct {
	VendorID, ProductID uint16
}

func (e *UntestedDevice) Error() string {
	return fmt.Sprintf("untested device %04x:%04x, pass --force to proceed anyway", e.VendorID, e.ProductID)
}
func (e *UntestedDevice) ExitCode() int { return ExitUntestedDevice }

type WrongMode struct {
	Operation string
	Mode      string
}

func (e *WrongMode) Error() string {
	return fmt.Sprintf("%s requires a different device mode, device is in %s", e.Operation, e.Mode)
}
func (e *WrongMode) ExitCode() int { return ExitDeviceError }
