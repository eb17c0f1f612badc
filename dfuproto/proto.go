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

// Package dfuproto implements the vendor's DFU-over-HID wire protocol: the
// typed request/response encodings (this file) and the host-side DFU 1.1
// state machine that drives them (state.go).
package dfuproto

import (
	"encoding/binary"

	"github.com/dfutool/bose-dfu/hidtransport"
	"github.com/dfutool/bose-dfu/internal/xerrors"
	"github.com/pkg/errors"
)

// State mirrors the DFU 1.1 device state machine, §6.1.2.
type State byte

const (
	AppIdle State = iota
	AppDetach
	DfuIdle
	DfuDownloadSync
	DfuDownloadBusy
	DfuDownloadIdle
	DfuManifestSync
	DfuManifest
	DfuManifestWaitReset
	DfuUploadIdle
	DfuError
)

func (s State) String() string {
	switch s {
	case AppIdle:
		return "appIDLE"
	case AppDetach:
		return "appDETACH"
	case DfuIdle:
		return "dfuIDLE"
	case DfuDownloadSync:
		return "dfuDNLOAD-SYNC"
	case DfuDownloadBusy:
		return "dfuDNBUSY"
	case DfuDownloadIdle:
		return "dfuDNLOAD-IDLE"
	case DfuManifestSync:
		return "dfuMANIFEST-SYNC"
	case DfuManifest:
		return "dfuMANIFEST"
	case DfuManifestWaitReset:
		return "dfuMANIFEST-WAIT-RESET"
	case DfuUploadIdle:
		return "dfuUPLOAD-IDLE"
	case DfuError:
		return "dfuERROR"
	default:
		return "unknown"
	}
}

// StatusCode mirrors the DFU 1.1 status codes returned by GET_STATUS.
type StatusCode byte

const (
	StatusOK StatusCode = 0x00
	// The remaining DFU 1.1 status codes (errTarget .. errStalledPkt) are
	// not individually named here: the protocol engine only distinguishes
	// "OK" from "not OK", surfacing the raw code in xerrors.DeviceError
	// for diagnostics.
)

// Status is the 6-byte DFU status structure returned by GET_STATUS, §3.
type Status struct {
	Status        StatusCode
	PollTimeoutMs uint32 // 24-bit on the wire, widened for convenience
	State         State
	StringIndex   byte
}

const statusLength = 6

// abortMarker is the first (and only) payload byte that distinguishes
// ABORT from CLR_STATUS on shared report 0x04, following DFU 1.1's request
// code 0x06 for DFU_ABORT. The vendor's own captures only ever show
// CLR_STATUS; this follows the DFU 1.1 spec literally per §9's open
// question.
const abortMarker = 0x06

// Client encodes/decodes the DFU-over-HID requests of §4.C on top of a
// hidtransport.Transport.
type Client struct {
	t hidtransport.Transport
}

// NewClient wraps an open transport for DFU protocol use.
func NewClient(t hidtransport.Transport) *Client {
	return &Client{t: t}
}

// Detach sends the DETACH request, asking an app-mode device to disconnect
// and re-enumerate in DFU mode within wTimeout milliseconds.
func (c *Client) Detach(wTimeout uint16) error {
	payload := make([]byte, 2)
	binary.LittleEndian.PutUint16(payload, wTimeout)

	if err := c.t.WriteFeature(hidtransport.ReportDetachInfo, payload); err != nil {
		return errors.Wrap(err, "failed to send DETACH")
	}
	return nil
}

// Dnload sends one DNLOAD block. A zero-length data slice signals
// end-of-transfer and triggers manifestation.
func (c *Client) Dnload(blockNum uint16, data []byte) error {
	payload := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint16(payload[0:2], blockNum)
	binary.LittleEndian.PutUint16(payload[2:4], uint16(len(data)))
	copy(payload[4:], data)

	if err := c.t.WriteOutput(hidtransport.ReportDnloadData, payload); err != nil {
		return errors.Wrap(err, "failed to send DNLOAD")
	}
	return nil
}

// GetStatus reads the device's current DFU status.
func (c *Client) GetStatus() (Status, error) {
	buf := make([]byte, statusLength)
	n, err := c.t.ReadFeature(hidtransport.ReportControl, buf)
	if err != nil {
		return Status{}, errors.Wrap(err, "failed to read GET_STATUS")
	}
	if n != statusLength {
		return Status{}, &xerrors.BadResponseLength{Want: statusLength, Got: n}
	}

	poll := uint32(buf[1]) | uint32(buf[2])<<8 | uint32(buf[3])<<16
	return Status{
		Status:        StatusCode(buf[0]),
		PollTimeoutMs: poll,
		State:         State(buf[4]),
		StringIndex:   buf[5],
	}, nil
}

// GetState reads just the device's current state, the 1-byte variant of
// report 0x04.
func (c *Client) GetState() (State, error) {
	buf := make([]byte, 1)
	n, err := c.t.ReadFeature(hidtransport.ReportControl, buf)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read GET_STATE")
	}
	if n != 1 {
		return 0, &xerrors.BadResponseLength{Want: 1, Got: n}
	}
	return State(buf[0]), nil
}

// ClrStatus clears a DfuError status, returning the device to DfuIdle.
func (c *Client) ClrStatus() error {
	if err := c.t.WriteFeature(hidtransport.ReportControl, nil); err != nil {
		return errors.Wrap(err, "failed to send CLR_STATUS")
	}
	return nil
}

// Abort aborts the current DFU transaction, per DFU 1.1 request code 0x06.
func (c *Client) Abort() error {
	if err := c.t.WriteFeature(hidtransport.ReportControl, []byte{abortMarker}); err != nil {
		return errors.Wrap(err, "failed to send ABORT")
	}
	return nil
}

// Info reads the vendor INFO string (device codename/version).
func (c *Client) Info() (string, error) {
	buf := make([]byte, 255)
	n, err := c.t.ReadFeature(hidtransport.ReportDeviceInfo, buf)
	if err != nil {
		return "", errors.Wrap(err, "failed to read INFO")
	}

	s := buf[:n]
	// trim a trailing NUL run, per §4.C's "null-terminated or
	// length-delimited, trim trailing NULs".
	for len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return string(s), nil
}
