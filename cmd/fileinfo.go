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
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/dfutool/bose-dfu/dfufile"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type fileInfoCommand struct {
	*baseCommand
}

func newFileInfoCommand() *fileInfoCommand {
	c := &fileInfoCommand{}

	c.baseCommand = newBaseCommand(&cobra.Command{
		Use:   "file-info FILE",
		Short: "Print the parsed contents of a .dfu image's suffix",
		Example: `bose-dfu file-info firmware.dfu`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(args[0])
		},
	})

	return c
}

func (c *fileInfoCommand) run(path string) error {
	img, err := readImage(path)
	if err != nil {
		return err
	}

	fmt.Printf("vendor=%04x product=%04x device=%04x dfu=%04x payload=%d crc=verified\n",
		img.IDVendor, img.IDProduct, img.BcdDevice, img.BcdDFU, len(img.Payload))
	return nil
}

// readImage expands ~ in path (the teacher's upgrade-firmware flag accepts
// the same shorthand), reads the file and parses it as a .dfu image.
func readImage(path string) (*dfufile.Image, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to expand firmware path")
	}

	raw, err := os.ReadFile(expanded)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read firmware file")
	}

	img, err := dfufile.Parse(raw)
	if err != nil {
		return nil, err
	}
	return img, nil
}
