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

type leaveDfuCommand struct {
	*baseCommand
	selector
}

func newLeaveDfuCommand() *leaveDfuCommand {
	c := &leaveDfuCommand{}

	c.baseCommand = newBaseCommand(&cobra.Command{
		Use:   "leave-dfu",
		Short: "Force a DFU-mode device back to its application",
		Example: `bose-dfu leave-dfu
bose-dfu leave-dfu -p 0002`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run()
		},
	})

	c.selector.register(c.cmd)
	return c
}

func (c *leaveDfuCommand) run() error {
	d, t, err := c.open(device.DfuMode, "leave-dfu")
	if err != nil {
		return err
	}
	defer t.Close()

	jww.INFO.Printf("leaving DFU mode on %04x:%04x\n", d.VendorID, d.ProductID)

	sess := dfuproto.NewSession(dfuproto.NewClient(t))
	return sess.LeaveDFU()
}
