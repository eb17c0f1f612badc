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
	"fmt"

	"github.com/dfutool/bose-dfu/device"
	"github.com/spf13/cobra"
)

type listCommand struct {
	*baseCommand
}

func newListCommand() *listCommand {
	c := &listCommand{}

	c.baseCommand = newBaseCommand(&cobra.Command{
		Use:   "list",
		Short: "List connected Bose devices",
		Example: `bose-dfu list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run()
		},
	})

	return c
}

func (c *listCommand) run() error {
	devices, err := device.Enumerate()
	if err != nil {
		return err
	}

	for _, d := range devices {
		mode := d.Mode.String()
		if d.Invalid {
			mode = "INVALID"
		}
		model := d.Model
		if model == "" {
			model = "-"
		}
		fmt.Printf("%s  %04x:%04x  %-7s  %-16s  %s\n", d.Info.Path, d.VendorID, d.ProductID, mode, d.Serial, model)
	}
	return nil
}
