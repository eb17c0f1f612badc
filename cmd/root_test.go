package cmd

import (
	"testing"

	"github.com/dfutool/bose-dfu/internal/xerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCli_RegistersAllSubcommands(t *testing.T) {
	c := NewCli()
	names := map[string]bool{}
	for _, sub := range c.cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"list", "info", "enter-dfu", "leave-dfu", "download", "file-info"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestCli_UnknownSubcommandFailsWithUserExitCode(t *testing.T) {
	c := NewCli()
	c.cmd.SetArgs([]string{"does-not-exist"})

	err := c.Execute()
	require.Error(t, err)
	assert.Equal(t, xerrors.ExitUserError, xerrors.ExitCodeFor(err))
}

func TestCli_FileInfoMissingArgFailsWithUserExitCode(t *testing.T) {
	c := NewCli()
	c.cmd.SetArgs([]string{"file-info"})

	err := c.Execute()
	require.Error(t, err)
	assert.Equal(t, xerrors.ExitUserError, xerrors.ExitCodeFor(err))
}

func TestCli_FileInfoOnMissingFileFailsWithUserExitCode(t *testing.T) {
	c := NewCli()
	c.cmd.SetArgs([]string{"file-info", "/nonexistent/path/firmware.dfu"})

	err := c.Execute()
	require.Error(t, err)
	assert.Equal(t, xerrors.ExitUserError, xerrors.ExitCodeFor(err))
}
