// Copyright © 2018 Wei Shen <shenwei356@gmail.com>
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
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
)

// checkError prints err and exits, the same fatal-on-first-error idiom
// the reference k-mer toolkit uses throughout its cmd package.
func checkError(err error) {
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

// Options holds the persistent flags shared by every subcommand.
type Options struct {
	NumCPUs  int
	Verbose  bool
	Compress bool
	Compact  bool
}

func getOptions(cmd *cobra.Command) *Options {
	return &Options{
		NumCPUs:  getFlagPositiveInt(cmd, "threads"),
		Verbose:  getFlagBool(cmd, "verbose"),
		Compress: !getFlagBool(cmd, "no-compress"),
		Compact:  getFlagBool(cmd, "compact"),
	}
}

func isStdin(file string) bool  { return file == "-" }
func isStdout(file string) bool { return file == "-" }

func getFlagString(cmd *cobra.Command, flag string) string {
	v, err := cmd.Flags().GetString(flag)
	checkError(errors.Wrapf(err, "flag: %s", flag))
	return v
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	v, err := cmd.Flags().GetBool(flag)
	checkError(errors.Wrapf(err, "flag: %s", flag))
	return v
}

func getFlagInt(cmd *cobra.Command, flag string) int {
	v, err := cmd.Flags().GetInt(flag)
	checkError(errors.Wrapf(err, "flag: %s", flag))
	return v
}

func getFlagFloat64(cmd *cobra.Command, flag string) float64 {
	v, err := cmd.Flags().GetFloat64(flag)
	checkError(errors.Wrapf(err, "flag: %s", flag))
	return v
}

func getFlagPositiveInt(cmd *cobra.Command, flag string) int {
	v := getFlagInt(cmd, flag)
	if v <= 0 {
		checkError(fmt.Errorf("value of --%s should be positive", flag))
	}
	return v
}

func getFlagNonNegativeFloat64(cmd *cobra.Command, flag string) float64 {
	v := getFlagFloat64(cmd, flag)
	if v < 0 {
		checkError(fmt.Errorf("value of --%s should be non-negative", flag))
	}
	return v
}

// getFileList returns args, or "-" (stdin) when none are given.
func getFileList(args []string) []string {
	if len(args) == 0 {
		return []string{"-"}
	}
	for _, file := range args {
		if isStdin(file) {
			continue
		}
		ok, err := pathutil.Exists(file)
		checkError(errors.Wrapf(err, "checking file: %s", file))
		if !ok {
			checkError(fmt.Errorf("file does not exist: %s", file))
		}
	}
	return args
}

// inStream opens file (or stdin for "-") as an io.ReadCloser,
// transparently gunzipping when its name ends in ".gz".
func inStream(file string) (io.ReadCloser, error) {
	if isStdin(file) {
		return io.NopCloser(bufio.NewReader(os.Stdin)), nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	if len(file) > 3 && file[len(file)-3:] == ".gz" {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return gzReadCloser{gz, f}, nil
	}
	return f, nil
}

// gzReadCloser closes both the gzip reader and the underlying file.
type gzReadCloser struct {
	*pgzip.Reader
	f *os.File
}

func (g gzReadCloser) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

// outStream opens file for writing (or stdout for "-"). The returned
// flush/close func must be deferred by the caller.
func outStream(file string) (io.Writer, func() error, error) {
	if isStdout(file) {
		w := bufio.NewWriter(os.Stdout)
		return w, w.Flush, nil
	}
	f, err := os.Create(file)
	if err != nil {
		return nil, nil, err
	}
	w := bufio.NewWriter(f)
	return w, func() error {
		if err := w.Flush(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}, nil
}
