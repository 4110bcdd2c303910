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

// Package cmd implements the strainge command-line tool: a thin cobra
// wrapper that kmerizes reads, builds and queries pan-genome databases,
// and calls variants against a reference, exercising the strainge,
// pangenome, search, reference and variantcall packages.
package cmd

import (
	"fmt"
	"os"
	"runtime"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

var log = logging.MustGetLogger("strainge")

// Version is the CLI's reported version string.
const Version = "0.1.0"

// RootCmd is the base command when strainge is invoked without a
// subcommand.
var RootCmd = &cobra.Command{
	Use:   "strainge",
	Short: "Strain-level microbial diversity toolkit",
	Long: fmt.Sprintf(`strainge - strain-level microbial diversity toolkit

Kmerizes sequencing reads and reference genomes, builds pan-genome
databases, searches a sample's k-mer spectrum against a database with
the iterative StrainGST algorithm, and calls per-scaffold variant
statistics from a read alignment against a chosen reference.

Version: %s
`, Version),
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	defaultThreads := runtime.NumCPU()
	if defaultThreads > 2 {
		defaultThreads = 2
	}

	RootCmd.PersistentFlags().IntP("threads", "j", defaultThreads, "number of CPUs to use")
	RootCmd.PersistentFlags().BoolP("verbose", "", false, "print verbose information")
	RootCmd.PersistentFlags().BoolP("no-compress", "C", false, "do not gzip-compress binary output files")
	RootCmd.PersistentFlags().BoolP("compact", "c", false, "recorded in the global options; no subcommand currently acts on it")
	RootCmd.PersistentFlags().String("infile-list", "", "file of input files list (one file per line); no subcommand currently reads it, inputs come from the cli arguments")
}

// defaultDBDir returns the default pan-genome database directory,
// ~/.strainge/db; search's --db/-d defaults to pan-genome.db inside it.
func defaultDBDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".strainge/db"
	}
	return home + "/.strainge/db"
}
