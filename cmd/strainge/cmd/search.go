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
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/stable"
	"github.com/spf13/cobra"

	"github.com/strainge-go/strainge"
	"github.com/strainge-go/strainge/pangenome"
	"github.com/strainge-go/strainge/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search a sample's k-mer spectrum against a pan-genome database",
	Long: `Search a sample's k-mer spectrum against a pan-genome database

Runs the iterative greedy StrainGST search of spec §4.D: kmerize the
given sample read file(s) at the database's k, then repeatedly score
every candidate strain and keep the best match until a stopping
threshold is reached.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		seq.ValidateSeq = false

		dbFile := getFlagString(cmd, "db")
		useFingerprint := getFlagBool(cmd, "fingerprint")
		useSignature := getFlagBool(cmd, "signature-index")
		boxed := getFlagBool(cmd, "table")

		iterations := getFlagInt(cmd, "iterations")
		top := getFlagPositiveInt(cmd, "top")
		minScore := getFlagFloat64(cmd, "min-score")
		minEvenness := getFlagFloat64(cmd, "min-evenness")
		minFrac := getFlagFloat64(cmd, "min-frac")
		minAcct := getFlagFloat64(cmd, "min-acct")
		universal := getFlagFloat64(cmd, "universal")

		fs, err := pangenome.NewFileStore(dbFile)
		checkError(errors.Wrap(err, dbFile))
		pg, err := pangenome.Open(fs, useFingerprint)
		checkError(errors.Wrap(err, dbFile))

		cfg := search.DefaultConfig()
		cfg.Iterations = iterations
		cfg.Top = top
		cfg.MinScore = minScore
		cfg.MinEvenness = minEvenness
		cfg.MinFrac = minFrac
		cfg.MinAcct = minAcct
		cfg.Universal = universal

		eng := search.New(pg, cfg)
		if useSignature {
			if opt.Verbose {
				log.Info("building signature index prefilter")
			}
			sig, err := pangenome.BuildSignatureIndex(pg)
			checkError(err)
			eng.Signature = sig
		}

		files := getFileList(args)

		ks, err := strainge.NewKmerSet(pg.Union.K)
		checkError(err)
		for _, file := range files {
			fastxReader, err := fastx.NewDefaultReader(file)
			checkError(errors.Wrap(err, file))
			reader := &fastxSequenceReader{r: fastxReader}
			checkError(ks.KmerizeReader(reader, strainge.KmerizeOptions{}))
		}

		name := "sample"
		if len(files) == 1 && !isStdin(files[0]) {
			base := filepath.Base(files[0])
			name = base[:len(base)-len(filepath.Ext(base))]
		}
		sample := search.NewSample(name, ks)

		result, err := eng.Run(sample)
		checkError(err)

		if boxed {
			writeBoxedResult(result)
			return
		}
		checkError(search.WriteResult(os.Stdout, result))
	},
}

// writeBoxedResult renders a search.Result as an aligned, borderless
// table with shenwei356/stable, for interactive terminal use (the pipe/wire
// contract itself stays the tab-separated text of search.WriteResult).
func writeBoxedResult(result *search.Result) {
	style := &stable.TableStyle{
		Name:      "plain",
		HeaderRow: stable.RowStyle{Begin: "", Sep: "  ", End: ""},
		DataRow:   stable.RowStyle{Begin: "", Sep: "  ", End: ""},
		Padding:   "",
	}

	columns := []stable.Column{
		{Header: "i"},
		{Header: "strain"},
		{Header: "score", Align: stable.AlignRight},
		{Header: "cov", Align: stable.AlignRight},
		{Header: "even", Align: stable.AlignRight},
		{Header: "acct", Align: stable.AlignRight},
	}
	tbl := stable.New()
	tbl.HeaderWithFormat(columns)
	for _, it := range result.Iterations {
		idx := fmt.Sprintf("%d", it.Round)
		if result.MultiRank {
			idx = fmt.Sprintf("%d.%d", it.Round, it.Rank)
		}
		tbl.AddRow([]interface{}{
			idx, it.Strain,
			fmt.Sprintf("%.3f", it.Score),
			fmt.Sprintf("%.3f", it.Cov),
			fmt.Sprintf("%.3f", it.Even),
			fmt.Sprintf("%.3f", it.Acct),
		})
	}
	fmt.Print(string(tbl.Render(style)))
}

func init() {
	RootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("db", "d", filepath.Join(defaultDBDir(), "pan-genome.db"), "pan-genome database file")
	searchCmd.Flags().Bool("fingerprint", false, "open the database in fingerprint_override mode")
	searchCmd.Flags().Bool("signature-index", false, "build a SignatureIndex prefilter before scoring")
	searchCmd.Flags().Bool("table", false, "render an aligned table instead of the tab-separated report")

	cfg := search.DefaultConfig()
	searchCmd.Flags().IntP("iterations", "i", cfg.Iterations, "maximum number of strains to report")
	searchCmd.Flags().IntP("top", "t", cfg.Top, "candidates kept per iteration")
	searchCmd.Flags().Float64P("min-score", "s", cfg.MinScore, "minimum score to keep iterating")
	searchCmd.Flags().Float64P("min-evenness", "e", cfg.MinEvenness, "minimum evenness to keep a candidate")
	searchCmd.Flags().Float64P("min-frac", "f", cfg.MinFrac, "minimum remaining k-mer fraction to score a strain")
	searchCmd.Flags().Float64("min-acct", cfg.MinAcct, "minimum fraction of the sample a strain must account for")
	searchCmd.Flags().Float64("universal", cfg.Universal, "exclude k-mers more abundant than this multiple of the median")
}
