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

package dfuproto

import (
	"time"

	"github.com/dfutool/bose-dfu/internal/xerrors"
)

// WTransferSize is the DNLOAD chunk size. The vendor's devices expose no
// DFU functional descriptor over HID, so this is hard-coded to the value
// observed in captures rather than negotiated.
const WTransferSize = 4096

// maxBlockNum is the largest value the 16-bit DNLOAD block counter holds.
const maxBlockNum = 0xFFFF

// ProgressFunc reports download progress as bytes sent / total.
type ProgressFunc func(sent, total int)

// allowedTransitions lists, for each state, the states DFU 1.1 permits the
// host to observe next on a GET_STATUS/GET_STATE response. "Any state" can
// additionally transition to DfuError, handled separately in transition().
var allowedTransitions = map[State][]State{
	AppIdle:              {AppDetach},
	AppDetach:            {DfuIdle},
	DfuIdle:              {DfuDownloadSync, DfuManifestSync},
	DfuDownloadSync:      {DfuDownloadBusy},
	DfuDownloadBusy:      {DfuDownloadIdle},
	DfuDownloadIdle:      {DfuDownloadSync, DfuManifestSync},
	DfuManifestSync:      {DfuManifest},
	DfuManifest:          {DfuManifestWaitReset},
	DfuManifestWaitReset: {AppIdle},
}

// Session tracks the host's view of a single device's DFU state across one
// top-level operation and drives the download/manifestation loops. It is
// not safe for concurrent use — the core is single-threaded by design, §5.
type Session struct {
	client *Client
	state  State
	sleep  func(time.Duration)
}

// NewSession wraps client, assuming the device starts in DfuIdle — the
// caller should call Sync before relying on this if the device's actual
// state is unknown.
func NewSession(client *Client) *Session {
	return &Session{client: client, state: DfuIdle, sleep: time.Sleep}
}

// State returns the session's current view of the device state.
func (s *Session) State() State { return s.state }

// Sync issues GET_STATUS once to learn the device's real state, applying
// the one automatic recovery the protocol performs: if the device is found
// in DfuError, CLR_STATUS is issued so subsequent requests are accepted.
func (s *Session) Sync() (Status, error) {
	st, err := s.client.GetStatus()
	if err != nil {
		return Status{}, err
	}
	if st.State == DfuError {
		if err := s.client.ClrStatus(); err != nil {
			return st, err
		}
		s.state = DfuIdle
		return st, nil
	}
	s.state = st.State
	return st, nil
}

// transition reconciles a newly observed state against what DFU 1.1 allows
// as a successor of s.state, adopting it if legal and failing with
// UnexpectedState (after an automatic CLR_STATUS attempt) otherwise.
func (s *Session) transition(got State) error {
	if got == s.state {
		return nil
	}
	if got == DfuError {
		err := &xerrors.UnexpectedState{Expected: s.state.String(), Got: got.String()}
		_ = s.client.ClrStatus()
		s.state = DfuIdle
		return err
	}
	for _, next := range allowedTransitions[s.state] {
		if next == got {
			s.state = got
			return nil
		}
	}
	err := &xerrors.UnexpectedState{Expected: s.state.String(), Got: got.String()}
	_ = s.client.ClrStatus()
	return err
}

// Detach sends DETACH to an app-mode device, transitioning it toward
// AppDetach. The device disconnects and re-enumerates in DFU mode on its
// own; the caller does not wait or reopen (§4.F's enter-dfu semantics).
func (s *Session) Detach(timeoutMs uint16) error {
	// DETACH is only sent to app-mode devices, which sit in AppIdle.
	s.state = AppIdle
	if err := s.client.Detach(timeoutMs); err != nil {
		return err
	}
	return s.transition(AppDetach)
}

// LeaveDFU forces manifestation from DfuIdle via a zero-length DNLOAD, the
// portable HID-only choice documented in §9's open question over a USB
// reset.
func (s *Session) LeaveDFU() error {
	if _, err := s.Sync(); err != nil {
		return err
	}
	if s.state != DfuIdle {
		return &xerrors.UnexpectedState{Expected: DfuIdle.String(), Got: s.state.String()}
	}

	if err := s.client.Dnload(0, nil); err != nil {
		return &xerrors.TransportLost{Detail: err.Error()}
	}
	if err := s.transition(DfuManifestSync); err != nil {
		return err
	}
	return s.pollManifest()
}

// Download runs the §4.D block-streamed download algorithm over payload,
// reporting progress via progress if non-nil.
func (s *Session) Download(payload []byte, progress ProgressFunc) error {
	numBlocks := (len(payload) + WTransferSize - 1) / WTransferSize
	if numBlocks > maxBlockNum {
		return &xerrors.ImageTooLarge{Blocks: numBlocks}
	}

	if _, err := s.Sync(); err != nil {
		return err
	}
	if s.state != DfuIdle {
		return &xerrors.UnexpectedState{Expected: DfuIdle.String(), Got: s.state.String()}
	}

	var block uint16
	sent := 0
	for i := 0; i < numBlocks; i++ {
		end := sent + WTransferSize
		if end > len(payload) {
			end = len(payload)
		}
		chunk := payload[sent:end]

		if err := s.client.Dnload(block, chunk); err != nil {
			return &xerrors.TransportLost{Detail: err.Error()}
		}
		if err := s.transition(DfuDownloadSync); err != nil {
			return err
		}
		if err := s.pollDownload(); err != nil {
			return err
		}

		sent = end
		block++
		if progress != nil {
			progress(sent, len(payload))
		}
	}

	// Zero-length DNLOAD signals end of transfer and starts manifestation.
	if err := s.client.Dnload(block, nil); err != nil {
		return &xerrors.TransportLost{Detail: err.Error()}
	}
	if err := s.transition(DfuManifestSync); err != nil {
		return err
	}
	return s.pollManifest()
}

// pollDownload drives GET_STATUS polling between DfuDownloadSync and
// DfuDownloadIdle, honoring each response's poll_timeout_ms.
func (s *Session) pollDownload() error {
	for {
		st, err := s.client.GetStatus()
		if err != nil {
			return &xerrors.TransportLost{Detail: err.Error()}
		}
		if st.Status != StatusOK {
			return &xerrors.DeviceError{StatusCode: byte(st.Status), StringIndex: st.StringIndex}
		}

		s.sleep(time.Duration(st.PollTimeoutMs) * time.Millisecond)

		if st.State == DfuDownloadIdle {
			s.state = DfuDownloadIdle
			return nil
		}
		if st.State != DfuDownloadBusy && st.State != DfuDownloadSync {
			return &xerrors.UnexpectedState{
				Expected: "dfuDNBUSY or dfuDNLOAD-SYNC",
				Got:      st.State.String(),
			}
		}
		s.state = st.State
	}
}

// pollManifest drives GET_STATUS polling between DfuManifestSync and
// DfuManifestWaitReset, after which the device resets and re-enumerates in
// app mode on its own.
func (s *Session) pollManifest() error {
	for {
		st, err := s.client.GetStatus()
		if err != nil {
			return &xerrors.TransportLost{Detail: err.Error()}
		}
		if st.Status != StatusOK {
			return &xerrors.DeviceError{StatusCode: byte(st.Status), StringIndex: st.StringIndex}
		}

		s.sleep(time.Duration(st.PollTimeoutMs) * time.Millisecond)

		if st.State == DfuManifestWaitReset {
			s.state = DfuManifestWaitReset
			return nil
		}
		if st.State != DfuManifest && st.State != DfuManifestSync {
			return &xerrors.UnexpectedState{
				Expected: "dfuMANIFEST or dfuMANIFEST-SYNC",
				Got:      st.State.String(),
			}
		}
		s.state = st.State
	}
}
