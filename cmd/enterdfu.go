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
	"github.com/dfutool/bose-dfu/device"
	"github.com/dfutool/bose-dfu/dfuproto"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/cobra"
)

// detachTimeoutMs is the wTimeout DETACH asks the device to honor before
// giving up and staying in app mode, per spec's fixed 1000 ms value.
const detachTimeoutMs = 1000

type enterDfuCommand struct {
	*baseCommand
	selector
}

func newEnterDfuCommand() *enterDfuCommand {
	c := &enterDfuCommand{}

	c.baseCommand = newBaseCommand(&cobra.Command{
		Use:   "enter-dfu",
		Short: "Reboot an app-mode device into DFU mode",
		Example: `bose-dfu enter-dfu
bose-dfu enter-dfu -p 0001`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run()
		},
	})

	c.selector.register(c.cmd)
	return c
}

func (c *enterDfuCommand) run() error {
	d, t, err := c.open(device.AppMode, "enter-dfu")
	if err != nil {
		return err
	}
	defer t.Close()

	jww.INFO.Printf("rebooting %04x:%04x into DFU mode\n", d.VendorID, d.ProductID)

	sess := dfuproto.NewSession(dfuproto.NewClient(t))
	if err := sess.Detach(detachTimeoutMs); err != nil {
		return err
	}

	jww.INFO.Printf("device disconnected; it will re-enumerate under its DFU-mode product ID\n")
	return nil
}
