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
	"fmt"
	"path/filepath"
	"strings"

	humanize "github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shenwei356/stable"
	"github.com/spf13/cobra"

	"github.com/strainge-go/strainge"
	"github.com/strainge-go/strainge/pangenome"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Build and inspect pan-genome databases",
}

var dbBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a pan-genome database from per-strain k-mer sets",
	Long: `Build a pan-genome database from per-strain k-mer sets

Each input file (produced by "strainge kmerize") becomes one named
strain group; its basename without extension is the strain name. The
union of every strain's k-mers is stored alongside them, in the
container format pangenome.WriteDatabase/FileStore read back (spec §6
"database file adds one named group per strain").
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		outFile := getFlagString(cmd, "out-file")

		files := getFileList(args)
		strains := make(map[string]*strainge.KmerSet, len(files))

		var union *strainge.KmerSet
		for _, file := range files {
			r, err := inStream(file)
			checkError(errors.Wrap(err, file))

			ks, err := strainge.ReadKmerSet(r)
			r.Close()
			checkError(errors.Wrap(err, file))

			name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
			strains[name] = ks

			if opt.Verbose {
				log.Infof("loaded strain %s: %s k-mers", name, humanize.Comma(int64(len(ks.Kmers))))
			}

			if union == nil {
				union = ks.Clone()
				continue
			}
			merged, err := union.Merge(ks)
			checkError(err)
			union = merged
		}

		if union == nil {
			checkError(fmt.Errorf("no input files given"))
		}

		w, closeFn, err := outStream(outFile)
		checkError(err)
		defer func() { checkError(closeFn()) }()

		checkError(pangenome.WriteDatabase(w, union, strains, opt.Compress))

		if opt.Verbose {
			log.Infof("database with %d strains (%s union k-mers) written to %s",
				len(strains), humanize.Comma(int64(len(union.Kmers))), outFile)
		}
	},
}

var dbInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show summary statistics of a pan-genome database",
	Run: func(cmd *cobra.Command, args []string) {
		files := getFileList(args)
		for _, file := range files {
			fs, err := pangenome.NewFileStore(file)
			checkError(errors.Wrap(err, file))

			pg, err := pangenome.Open(fs, false)
			checkError(errors.Wrap(err, file))

			style := &stable.TableStyle{
				Name:      "plain",
				HeaderRow: stable.RowStyle{Begin: "", Sep: "  ", End: ""},
				DataRow:   stable.RowStyle{Begin: "", Sep: "  ", End: ""},
				Padding:   "",
			}
			columns := []stable.Column{
				{Header: "strain"},
				{Header: "kmers", Align: stable.AlignRight},
			}
			tbl := stable.New()
			tbl.HeaderWithFormat(columns)
			tbl.AddRow([]interface{}{"(union)", humanize.Comma(int64(len(pg.Union.Kmers)))})
			for _, name := range pg.Names {
				s, err := pg.LoadStrain(name)
				checkError(err)
				tbl.AddRow([]interface{}{name, humanize.Comma(int64(s.DistinctKmers))})
			}
			fmt.Print(string(tbl.Render(style)))
		}
	},
}

func init() {
	RootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbBuildCmd)
	dbCmd.AddCommand(dbInfoCmd)

	dbBuildCmd.Flags().StringP("out-file", "o", "-", `output database file ("-" for stdout)`)
}
