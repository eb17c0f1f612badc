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

// Package cmd wires the six bose-dfu subcommands onto a cobra command tree.
// Exit-code mapping lives in main.go, not here: every RunE returns a plain
// error and lets internal/xerrors decide what that means on the way out.
package cmd

import (
	"github.com/dfutool/bose-dfu/internal/log"
	"github.com/spf13/cobra"
)

// Command is implemented by every subcommand constructor's return value.
type Command interface {
	init(cli *Cli)
	getCommand() *cobra.Command
}

type globalOptions struct {
	Quiet bool
	Debug bool
}

type baseCommand struct {
	cmd *cobra.Command
	cli *Cli
}

func (c *baseCommand) init(cli *Cli) {
	c.cli = cli
}

func (c *baseCommand) getCommand() *cobra.Command {
	return c.cmd
}

func (c *baseCommand) AddCommand(command Command) {
	c.cmd.AddCommand(command.getCommand())
}

func newBaseCommand(cmd *cobra.Command) *baseCommand {
	return &baseCommand{cmd: cmd}
}

// Cli is the root command.
type Cli struct {
	*baseCommand
	globalOptions
}

// NewCli builds the full bose-dfu command tree.
func NewCli() *Cli {
	c := &Cli{}

	c.baseCommand = newBaseCommand(&cobra.Command{
		Use:     "bose-dfu",
		Short:   "Update firmware on Bose consumer audio devices",
		Long:    `bose-dfu lists, inspects and updates Bose devices over their vendor DFU-over-HID protocol.`,
		Version: "0.1",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetLevel(c.Debug, c.Quiet)
		},
	})

	c.cmd.SilenceUsage = true
	c.cmd.SilenceErrors = true

	c.cmd.PersistentFlags().BoolVarP(&c.Quiet, "quiet", "q", false, "suppress all output")
	c.cmd.PersistentFlags().BoolVarP(&c.Debug, "debug", "D", false, "produce debug output")

	c.AddCommand(newListCommand())
	c.AddCommand(newInfoCommand())
	c.AddCommand(newEnterDfuCommand())
	c.AddCommand(newLeaveDfuCommand())
	c.AddCommand(newDownloadCommand())
	c.AddCommand(newFileInfoCommand())

	return c
}

func (c *Cli) AddCommand(command Command) {
	command.init(c)
	c.baseCommand.AddCommand(command)
}

// Execute runs the command tree, returning whatever error the chosen
// subcommand's RunE produced. The caller (main.go) maps it to an exit code.
func (c *Cli) Execute() error {
	return c.cmd.Execute()
}
