package device

import (
	"testing"

	"github.com/dfutool/bose-dfu/internal/xerrors"
	"github.com/karalabe/hid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_KnownAppMode(t *testing.T) {
	d := classify(hid.DeviceInfo{VendorID: VendorID, ProductID: 0x0001})
	assert.Equal(t, AppMode, d.Mode)
	assert.Equal(t, "SoundLink Color II", d.Model)
}

func TestClassify_KnownDfuMode(t *testing.T) {
	d := classify(hid.DeviceInfo{VendorID: VendorID, ProductID: 0x0002})
	assert.Equal(t, DfuMode, d.Mode)
	assert.Equal(t, "SoundLink Color II", d.Model)
}

func TestClassify_UnknownPID(t *testing.T) {
	d := classify(hid.DeviceInfo{VendorID: VendorID, ProductID: 0xBEEF})
	assert.Equal(t, Unknown, d.Mode)
	assert.Empty(t, d.Model)
}

func TestSelect_NoMatch(t *testing.T) {
	_, err := Select(nil, Filter{})
	require.Error(t, err)

	var notFound *xerrors.DeviceNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestSelect_Ambiguous(t *testing.T) {
	devices := []Device{
		{ProductID: 0x0001, Serial: "AAA"},
		{ProductID: 0x0001, Serial: "BBB"},
	}
	_, err := Select(devices, Filter{PID: 0x0001, HasPID: true})
	require.Error(t, err)

	var ambiguous *xerrors.AmbiguousSelection
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, 2, ambiguous.Count)
}

func TestSelect_NarrowedBySerial(t *testing.T) {
	devices := []Device{
		{ProductID: 0x0001, Serial: "AAA"},
		{ProductID: 0x0001, Serial: "BBB"},
	}
	got, err := Select(devices, Filter{Serial: "BBB"})
	require.NoError(t, err)
	assert.Equal(t, "BBB", got.Serial)
}

// TestRequireKnown_UntestedRefused covers S5: an untested device, operated
// on without --force, is refused with a message containing "untested" and
// an ExitUntestedDevice exit code.
func TestRequireKnown_UntestedRefused(t *testing.T) {
	d := Device{VendorID: VendorID, ProductID: 0xBEEF, Mode: Unknown}

	err := RequireKnown(d, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "untested")
	assert.Equal(t, xerrors.ExitUntestedDevice, xerrors.ExitCodeFor(err))
}

func TestRequireKnown_ForceAllows(t *testing.T) {
	d := Device{VendorID: VendorID, ProductID: 0xBEEF, Mode: Unknown}
	assert.NoError(t, RequireKnown(d, true))
}

// TestRequireMode_WrongModeRefused covers S6: download against an app-mode
// device exits with code 2 and a WrongMode error.
func TestRequireMode_WrongModeRefused(t *testing.T) {
	d := Device{Mode: AppMode}

	err := RequireMode(d, DfuMode, "download")
	require.Error(t, err)

	var wrongMode *xerrors.WrongMode
	require.ErrorAs(t, err, &wrongMode)
	assert.Equal(t, xerrors.ExitDeviceError, xerrors.ExitCodeFor(err))
}

func TestRequireMode_UnknownDeviceLetThrough(t *testing.T) {
	d := Device{Mode: Unknown}
	assert.NoError(t, RequireMode(d, DfuMode, "download"))
}
