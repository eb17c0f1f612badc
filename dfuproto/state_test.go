package dfuproto

import (
	"testing"
	"time"

	"github.com/dfutool/bose-dfu/hidtransport/hidtest"
	"github.com/dfutool/bose-dfu/internal/xerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(fake *hidtest.Device) *Session {
	sess := NewSession(NewClient(fake))
	sess.sleep = func(time.Duration) {}
	return sess
}

func TestDownload_ExactDnloadCount(t *testing.T) {
	payload := make([]byte, WTransferSize*2+100) // ceil = 3 blocks
	for i := range payload {
		payload[i] = byte(i)
	}

	fake := &hidtest.Device{Statuses: []hidtest.StatusResponse{
		{Status: 0, State: byte(DfuIdle)},           // Sync
		{Status: 0, State: byte(DfuDownloadIdle)},   // block 0
		{Status: 0, State: byte(DfuDownloadIdle)},   // block 1
		{Status: 0, State: byte(DfuDownloadIdle)},   // block 2
		{Status: 0, State: byte(DfuManifestWaitReset)}, // final
	}}
	sess := newTestSession(fake)

	err := sess.Download(payload, nil)
	require.NoError(t, err)

	require.Len(t, fake.Dnloads, 4) // 3 blocks + 1 empty end-of-transfer
	assert.Equal(t, uint16(0), fake.Dnloads[0].BlockNum)
	assert.Equal(t, uint16(1), fake.Dnloads[1].BlockNum)
	assert.Equal(t, uint16(2), fake.Dnloads[2].BlockNum)
	assert.Equal(t, uint16(3), fake.Dnloads[3].BlockNum)
	assert.Empty(t, fake.Dnloads[3].Data)
	assert.Equal(t, DfuManifestWaitReset, sess.State())
}

func TestDownload_ZeroLengthPayload(t *testing.T) {
	fake := &hidtest.Device{Statuses: []hidtest.StatusResponse{
		{Status: 0, State: byte(DfuIdle)},
		{Status: 0, State: byte(DfuManifestWaitReset)},
	}}
	sess := newTestSession(fake)

	err := sess.Download(nil, nil)
	require.NoError(t, err)
	require.Len(t, fake.Dnloads, 1)
	assert.Equal(t, uint16(0), fake.Dnloads[0].BlockNum)
}

func TestDownload_DeviceErrorAbortsAndStopsSending(t *testing.T) {
	payload := make([]byte, WTransferSize*3)

	fake := &hidtest.Device{Statuses: []hidtest.StatusResponse{
		{Status: 0, State: byte(DfuIdle)},
		{Status: 0x01, State: byte(DfuError)}, // device rejects first block
	}}
	sess := newTestSession(fake)

	err := sess.Download(payload, nil)
	require.Error(t, err)

	var devErr *xerrors.DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, byte(0x01), devErr.StatusCode)

	require.Len(t, fake.Dnloads, 1, "no further DNLOAD after a DeviceError")
}

func TestDownload_ImageTooLarge(t *testing.T) {
	payload := make([]byte, (maxBlockNum+1)*WTransferSize)
	sess := newTestSession(&hidtest.Device{})

	err := sess.Download(payload, nil)
	require.Error(t, err)

	var tooLarge *xerrors.ImageTooLarge
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, maxBlockNum+1, tooLarge.Blocks)
}

func TestDownload_HonorsPollTimeout(t *testing.T) {
	fake := &hidtest.Device{Statuses: []hidtest.StatusResponse{
		{Status: 0, State: byte(DfuIdle)},
		{Status: 0, PollTimeoutMs: 50, State: byte(DfuDownloadIdle)},
		{Status: 0, State: byte(DfuManifestWaitReset)},
	}}

	sess := NewSession(NewClient(fake))
	var slept []time.Duration
	sess.sleep = func(d time.Duration) { slept = append(slept, d) }

	err := sess.Download(make([]byte, 1), nil)
	require.NoError(t, err)
	require.Contains(t, slept, 50*time.Millisecond)
}

func TestDownload_ProgressReportsBytesSent(t *testing.T) {
	payload := make([]byte, WTransferSize+10)
	fake := &hidtest.Device{Statuses: []hidtest.StatusResponse{
		{Status: 0, State: byte(DfuIdle)},
		{Status: 0, State: byte(DfuDownloadIdle)},
		{Status: 0, State: byte(DfuDownloadIdle)},
		{Status: 0, State: byte(DfuManifestWaitReset)},
	}}
	sess := newTestSession(fake)

	var got []int
	err := sess.Download(payload, func(sent, total int) { got = append(got, sent) })
	require.NoError(t, err)
	require.Equal(t, []int{WTransferSize, WTransferSize + 10}, got)
}

func TestTransition_LegalAdoptsState(t *testing.T) {
	sess := newTestSession(&hidtest.Device{})
	sess.state = DfuIdle

	err := sess.transition(DfuDownloadSync)
	require.NoError(t, err)
	assert.Equal(t, DfuDownloadSync, sess.State())
}

func TestTransition_IllegalRecoversViaClrStatus(t *testing.T) {
	fake := &hidtest.Device{}
	sess := newTestSession(fake)
	sess.state = DfuIdle

	err := sess.transition(DfuManifest) // not a legal successor of DfuIdle
	require.Error(t, err)

	var unexpected *xerrors.UnexpectedState
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, 1, fake.ClrStatusCount)
}

func TestTransition_DfuErrorRecoversToIdle(t *testing.T) {
	fake := &hidtest.Device{}
	sess := newTestSession(fake)
	sess.state = DfuDownloadSync

	err := sess.transition(DfuError)
	require.Error(t, err)
	assert.Equal(t, 1, fake.ClrStatusCount)
	assert.Equal(t, DfuIdle, sess.State())
}

func TestLeaveDFU_SendsZeroLengthDnload(t *testing.T) {
	fake := &hidtest.Device{Statuses: []hidtest.StatusResponse{
		{Status: 0, State: byte(DfuIdle)},
		{Status: 0, State: byte(DfuManifestWaitReset)},
	}}
	sess := newTestSession(fake)

	err := sess.LeaveDFU()
	require.NoError(t, err)
	require.Len(t, fake.Dnloads, 1)
	assert.Empty(t, fake.Dnloads[0].Data)
}

func TestDetach_SendsTimeoutPayload(t *testing.T) {
	fake := &hidtest.Device{}
	sess := newTestSession(fake)
	sess.state = AppIdle

	err := sess.Detach(1000)
	require.NoError(t, err)
	require.Len(t, fake.Detaches, 1)
	assert.Equal(t, []byte{0xE8, 0x03}, fake.Detaches[0]) // 1000, little-endian
	assert.Equal(t, AppDetach, sess.State())
}
