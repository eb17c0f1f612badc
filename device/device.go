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

// Package device enumerates and classifies the vendor's HID devices, and
// enforces the selection and mode policy the CLI commands depend on.
package device

import (
	"github.com/dfutool/bose-dfu/internal/xerrors"
	"github.com/karalabe/hid"
	"github.com/pkg/errors"
)

// VendorID is the vendor's USB vendor ID, per §6's known-IDs table.
const VendorID = 0x05A7

// Mode classifies a discovered device.
type Mode int

const (
	// Unknown means the PID was not found in either mode table; the
	// device might still be a real unit of a model this tool has not
	// been taught about yet.
	Unknown Mode = iota
	AppMode
	DfuMode
)

func (m Mode) String() string {
	switch m {
	case AppMode:
		return "app"
	case DfuMode:
		return "dfu"
	default:
		return "unknown"
	}
}

// Model names one confirmed device pair: its app-mode and DFU-mode product
// IDs, and a human-readable name.
type Model struct {
	Name       string
	AppModePID uint16
	DfuModePID uint16
}

// knownModels is the compile-time allowlist of confirmed device models.
// Only SoundLink Color II has been verified against real hardware; other
// vendor products are treated as Unknown and require --force.
var knownModels = []Model{
	{Name: "SoundLink Color II", AppModePID: 0x0001, DfuModePID: 0x0002},
}

func lookupByAppPID(pid uint16) (Model, bool) {
	for _, m := range knownModels {
		if m.AppModePID == pid {
			return m, true
		}
	}
	return Model{}, false
}

func lookupByDfuPID(pid uint16) (Model, bool) {
	for _, m := range knownModels {
		if m.DfuModePID == pid {
			return m, true
		}
	}
	return Model{}, false
}

// Device is one enumerated HID endpoint classified against the known-model
// tables.
type Device struct {
	Info      hid.DeviceInfo
	VendorID  uint16
	ProductID uint16
	Serial    string
	Mode      Mode
	Model     string // empty when Mode is Unknown
	// Invalid is set when the device matched VendorID but could not be
	// opened for classification (a permission problem, typically); list
	// reports it with mode INVALID instead of failing outright.
	Invalid bool
}

// Enumerate lists every HID device presented under VendorID, classifying
// each by product ID against the known app-mode/DFU-mode tables.
func Enumerate() ([]Device, error) {
	infos, err := hid.Enumerate(VendorID, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to enumerate HID devices")
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		d := classify(info)
		// A probe-open catches the missing-udev-rule case §6 calls out:
		// the device enumerates fine but access is denied at open time.
		if h, openErr := info.Open(); openErr != nil {
			d.Invalid = true
		} else {
			h.Close()
		}
		devices = append(devices, d)
	}
	return devices, nil
}

func classify(info hid.DeviceInfo) Device {
	d := Device{
		Info:      info,
		VendorID:  info.VendorID,
		ProductID: info.ProductID,
		Serial:    info.Serial,
	}

	if m, ok := lookupByAppPID(info.ProductID); ok {
		d.Mode = AppMode
		d.Model = m.Name
		return d
	}
	if m, ok := lookupByDfuPID(info.ProductID); ok {
		d.Mode = DfuMode
		d.Model = m.Name
		return d
	}
	d.Mode = Unknown
	return d
}

// Filter narrows Select's candidate set. A zero value matches every device.
type Filter struct {
	PID    uint16
	HasPID bool
	Serial string
}

// Select picks exactly one device out of Enumerate's results matching
// filter, failing with DeviceNotFound or AmbiguousSelection otherwise.
func Select(devices []Device, filter Filter) (Device, error) {
	var matches []Device
	for _, d := range devices {
		if filter.HasPID && d.ProductID != filter.PID {
			continue
		}
		if filter.Serial != "" && d.Serial != filter.Serial {
			continue
		}
		matches = append(matches, d)
	}

	switch len(matches) {
	case 0:
		return Device{}, &xerrors.DeviceNotFound{Detail: "no device matched the given selectors"}
	case 1:
		return matches[0], nil
	default:
		return Device{}, &xerrors.AmbiguousSelection{Count: len(matches)}
	}
}

// RequireKnown enforces the untested-device policy: an Unknown device is
// refused unless force is set, in which case it is let through and warning
// the user is left to the caller.
func RequireKnown(d Device, force bool) error {
	if d.Mode != Unknown {
		return nil
	}
	if force {
		return nil
	}
	return &xerrors.UntestedDevice{VendorID: d.VendorID, ProductID: d.ProductID}
}

// RequireMode enforces that d is in the mode a given operation needs,
// naming the operation in the resulting WrongMode error. An Unknown device
// has no verifiable mode by construction (its PID matched neither table),
// so it is let through here — RequireKnown is what gates it on --force.
func RequireMode(d Device, want Mode, operation string) error {
	if d.Mode == want || d.Mode == Unknown {
		return nil
	}
	return &xerrors.WrongMode{Operation: operation, Mode: d.Mode.String()}
}
