package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorFilter_EmptyMatchesAll(t *testing.T) {
	s := &selector{}
	f, err := s.filter()
	require.NoError(t, err)
	assert.False(t, f.HasPID)
	assert.Empty(t, f.Serial)
}

func TestSelectorFilter_ParsesHexPID(t *testing.T) {
	s := &selector{pidHex: "05a7"}
	f, err := s.filter()
	require.NoError(t, err)
	assert.True(t, f.HasPID)
	assert.Equal(t, uint16(0x05a7), f.PID)
}

func TestSelectorFilter_RejectsBadHex(t *testing.T) {
	s := &selector{pidHex: "not-hex"}
	_, err := s.filter()
	require.Error(t, err)
}

func TestSelectorFilter_CarriesSerial(t *testing.T) {
	s := &selector{serial: "ABC123"}
	f, err := s.filter()
	require.NoError(t, err)
	assert.Equal(t, "ABC123", f.Serial)
}
