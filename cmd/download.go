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
	"github.com/dfutool/bose-dfu/dfufile"
	"github.com/dfutool/bose-dfu/dfuproto"
	"github.com/dfutool/bose-dfu/internal/xerrors"
	"github.com/spf13/cobra"
	"gopkg.in/cheggaaa/pb.v2"
)

type downloadCommand struct {
	*baseCommand
	selector
}

func newDownloadCommand() *downloadCommand {
	c := &downloadCommand{}

	c.baseCommand = newBaseCommand(&cobra.Command{
		Use:   "download FILE",
		Short: "Upgrade a DFU-mode device with a .dfu firmware image",
		Example: `bose-dfu download firmware.dfu
bose-dfu download firmware.dfu -p 0002`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(args[0])
		},
	})

	c.selector.register(c.cmd)
	return c
}

func (c *downloadCommand) run(path string) error {
	img, err := readImage(path)
	if err != nil {
		return err
	}

	d, t, err := c.open(device.DfuMode, "download")
	if err != nil {
		return err
	}
	defer t.Close()

	if !dfufile.Matches(img, d.VendorID, d.ProductID) {
		return &xerrors.MismatchedDeviceIDs{
			ImageVID:  img.IDVendor,
			ImagePID:  img.IDProduct,
			DeviceVID: d.VendorID,
			DevicePID: d.ProductID,
		}
	}

	sess := dfuproto.NewSession(dfuproto.NewClient(t))

	var bar *pb.ProgressBar
	err = sess.Download(img.Payload, func(sent, total int) {
		if bar == nil {
			bar = pb.ProgressBarTemplate(`{{ white "DFU:" }} {{bar . | green}} {{speed . "%s byte/s" | white }}`).Start(total)
		}
		bar.SetCurrent(int64(sent))
	})
	if bar != nil {
		bar.Finish()
	}
	return err
}
