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

// Package log centralizes the leveled logging used across the tool, on top
// of jwalterweatherman the way the upstream cobra tooling sets it up.
package log

import (
	jww "github.com/spf13/jwalterweatherman"
)

// SetLevel switches the stdout threshold between quiet, normal, and debug
// output, mirroring the cli's --quiet/--debug flags.
func SetLevel(debug, quiet bool) {
	switch {
	case debug:
		jww.SetStdoutThreshold(jww.LevelDebug)
	case quiet:
		jww.SetStdoutThreshold(jww.LevelFatal)
	default:
		jww.SetStdoutThreshold(jww.LevelInfo)
	}
}

func Debugf(format string, args ...interface{}) { jww.DEBUG.Printf(format, args...) }
func Infof(format string, args ...interface{})  { jww.INFO.Printf(format, args...) }
func Warnf(format string, args ...interface{})  { jww.WARN.Printf(format, args...) }
func Errorf(format string, args ...interface{}) { jww.ERROR.Printf(format, args...) }
