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

package cmd

import (
	"strconv"

	"github.com/dfutool/bose-dfu/device"
	"github.com/dfutool/bose-dfu/hidtransport"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/cobra"
)

// selector holds the -p/-s/-f flags every device-opening subcommand shares.
type selector struct {
	pidHex string
	serial string
	force  bool
}

func (s *selector) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.pidHex, "pid", "p", "", "product ID of the device, in hex")
	cmd.Flags().StringVarP(&s.serial, "serial", "s", "", "serial number of the device")
	cmd.Flags().BoolVarP(&s.force, "force", "f", false, "proceed even if the device is untested")
}

func (s *selector) filter() (device.Filter, error) {
	var f device.Filter
	if s.pidHex != "" {
		pid, err := strconv.ParseUint(s.pidHex, 16, 16)
		if err != nil {
			return f, errors.Wrap(err, "invalid --pid value, expected hex")
		}
		f.PID = uint16(pid)
		f.HasPID = true
	}
	f.Serial = s.serial
	return f, nil
}

// pick enumerates and selects exactly one device per s, enforcing the
// untested-device policy. It does not check operation mode or open a
// transport — callers that need a live handle call open instead.
func (s *selector) pick() (device.Device, error) {
	filter, err := s.filter()
	if err != nil {
		return device.Device{}, err
	}

	devices, err := device.Enumerate()
	if err != nil {
		return device.Device{}, err
	}

	d, err := device.Select(devices, filter)
	if err != nil {
		return device.Device{}, err
	}

	if err := device.RequireKnown(d, s.force); err != nil {
		return device.Device{}, err
	}
	if d.Mode == device.Unknown {
		jww.WARN.Printf("proceeding with untested device %04x:%04x (--force)\n", d.VendorID, d.ProductID)
	}

	return d, nil
}

// open picks a device, enforces it is in wantMode for operation, and opens
// a HID handle on it. Callers must Close the returned transport.
func (s *selector) open(wantMode device.Mode, operation string) (device.Device, hidtransport.Transport, error) {
	d, err := s.pick()
	if err != nil {
		return device.Device{}, nil, err
	}
	if err := device.RequireMode(d, wantMode, operation); err != nil {
		return device.Device{}, nil, err
	}

	t, err := hidtransport.Open(d.Info)
	if err != nil {
		return device.Device{}, nil, err
	}
	return d, t, nil
}
