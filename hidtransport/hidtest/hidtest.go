// Package hidtest provides a scriptable fake hidtransport.Transport for
// driving the DFU protocol engine in tests without a real device, the way
// the teacher's ble package let dfu.Dfu be exercised against a fake
// Peripheral/Characteristic pair.
package hidtest

import (
	"encoding/binary"
	"fmt"

	"github.com/dfutool/bose-dfu/hidtransport"
)

// StatusResponse is one canned GET_STATUS reply: status byte, poll timeout
// in milliseconds and state byte, encoded exactly as the device would.
type StatusResponse struct {
	Status        byte
	PollTimeoutMs uint32
	State         byte
	StringIndex   byte
}

// Device is a fake hidtransport.Transport. Tests populate Statuses with the
// sequence of GET_STATUS replies to hand back, one per call, and inspect
// Dnloads/Detaches/ClrStatusCount afterward to assert on what the engine
// actually sent.
type Device struct {
	Statuses []StatusResponse

	Dnloads        []DnloadCall
	Detaches       [][]byte
	ClrStatusCount int
	AbortCount     int
	Closed         bool

	statusIdx int
}

// DnloadCall records one observed DNLOAD: the block number and payload.
type DnloadCall struct {
	BlockNum uint16
	Data     []byte
}

func (d *Device) WriteFeature(reportID byte, payload []byte) error {
	switch reportID {
	case hidtransport.ReportDetachInfo:
		d.Detaches = append(d.Detaches, append([]byte(nil), payload...))
	case hidtransport.ReportControl:
		if len(payload) == 0 {
			d.ClrStatusCount++
		} else {
			d.AbortCount++
		}
	}
	return nil
}

func (d *Device) ReadFeature(reportID byte, buf []byte) (int, error) {
	if reportID != hidtransport.ReportControl {
		return 0, fmt.Errorf("hidtest: unexpected ReadFeature report 0x%02x", reportID)
	}
	if d.statusIdx >= len(d.Statuses) {
		return 0, fmt.Errorf("hidtest: GetStatus called more times than scripted (%d)", len(d.Statuses))
	}
	st := d.Statuses[d.statusIdx]
	d.statusIdx++

	if len(buf) == 1 {
		buf[0] = st.State
		return 1, nil
	}

	buf[0] = st.Status
	buf[1] = byte(st.PollTimeoutMs)
	buf[2] = byte(st.PollTimeoutMs >> 8)
	buf[3] = byte(st.PollTimeoutMs >> 16)
	buf[4] = st.State
	buf[5] = st.StringIndex
	return 6, nil
}

func (d *Device) WriteOutput(reportID byte, payload []byte) error {
	if reportID != hidtransport.ReportDnloadData {
		return fmt.Errorf("hidtest: unexpected WriteOutput report 0x%02x", reportID)
	}
	blockNum := binary.LittleEndian.Uint16(payload[0:2])
	length := binary.LittleEndian.Uint16(payload[2:4])
	data := append([]byte(nil), payload[4:4+int(length)]...)
	d.Dnloads = append(d.Dnloads, DnloadCall{BlockNum: blockNum, Data: data})
	return nil
}

func (d *Device) ReadInput(buf []byte, timeoutMs int) (int, error) {
	return 0, hidtransport.ErrTimeout
}

func (d *Device) Close() error {
	d.Closed = true
	return nil
}
