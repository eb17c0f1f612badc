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

package hidtransport

import (
	"github.com/karalabe/hid"
	"github.com/pkg/errors"
)

// device is the Transport backed by a real github.com/karalabe/hid handle.
type device struct {
	hid hid.Device
}

// Open opens info as the device handle for the duration of one top-level
// operation; callers must Close it on every exit path.
func Open(info hid.DeviceInfo) (Transport, error) {
	h, err := info.Open()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open HID device")
	}
	return &device{hid: h}, nil
}

func (d *device) WriteFeature(reportID byte, payload []byte) error {
	buf := make([]byte, 1+len(payload))
	buf[0] = reportID
	copy(buf[1:], payload)

	_, err := d.hid.SendFeatureReport(buf)
	if err != nil {
		return errors.Wrap(err, "failed to send feature report")
	}
	return nil
}

func (d *device) ReadFeature(reportID byte, buf []byte) (int, error) {
	report := make([]byte, len(buf)+1)
	report[0] = reportID

	n, err := d.hid.GetFeatureReport(report)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get feature report")
	}
	if n == 0 {
		return 0, nil
	}

	copy(buf, report[1:n])
	return n - 1, nil
}

func (d *device) WriteOutput(reportID byte, payload []byte) error {
	buf := make([]byte, 1+len(payload))
	buf[0] = reportID
	copy(buf[1:], payload)

	_, err := d.hid.Write(buf)
	if err != nil {
		return errors.Wrap(err, "failed to write output report")
	}
	return nil
}

func (d *device) ReadInput(buf []byte, timeoutMs int) (int, error) {
	n, err := d.hid.ReadTimeout(buf, timeoutMs)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read input report")
	}
	if n == 0 {
		return 0, ErrTimeout
	}
	return n, nil
}

func (d *device) Close() error {
	return d.hid.Close()
}
