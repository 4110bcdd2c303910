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
	"io"
	"runtime"

	humanize "github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/spf13/cobra"

	"github.com/strainge-go/strainge"
)

// fastxSequenceReader adapts a fastx.Reader to strainge.SequenceReader
// (spec §6: "FASTA/FASTQ parsing... lives outside the core").
type fastxSequenceReader struct {
	r *fastx.Reader
}

func (a *fastxSequenceReader) Read() (strainge.SequenceRecord, error) {
	rec, err := a.r.Read()
	if err != nil {
		if err == io.EOF {
			return strainge.SequenceRecord{}, io.EOF
		}
		return strainge.SequenceRecord{}, strainge.ErrMalformedRecord
	}
	sr := strainge.SequenceRecord{ID: rec.ID, Seq: append([]byte(nil), rec.Seq.Seq...)}
	if rec.Seq.Qual != nil {
		sr.Quality = append([]byte(nil), rec.Seq.Qual...)
	}
	return sr, nil
}

var kmerizeCmd = &cobra.Command{
	Use:   "kmerize",
	Short: "K-merize FASTA/FASTQ files into a binary k-mer set",
	Long: `K-merize FASTA/FASTQ files into a binary k-mer set

Reads every input file with the streaming reader of spec §4.B
kmerize_file, accumulating a canonical k-mer set in bounded batches,
and writes the result as a single-set container (strainge.WriteKmerSet).
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)
		seq.ValidateSeq = false

		k := getFlagPositiveInt(cmd, "kmer-len")
		fraction := getFlagNonNegativeFloat64(cmd, "fingerprint-fraction")
		limit := int64(getFlagInt(cmd, "limit"))
		prune := int64(getFlagInt(cmd, "prune-singletons"))
		outFile := getFlagString(cmd, "out-file")

		files := getFileList(args)

		ks, err := strainge.NewKmerSet(k)
		checkError(err)

		kopts := strainge.KmerizeOptions{Limit: limit, Prune: prune}

		for _, file := range files {
			if opt.Verbose {
				log.Infof("kmerizing: %s", file)
			}
			fastxReader, err := fastx.NewDefaultReader(file)
			checkError(errors.Wrap(err, file))

			reader := &fastxSequenceReader{r: fastxReader}
			checkError(ks.KmerizeReader(reader, kopts))
		}

		if fraction > 0 {
			ks.MinHash(fraction)
		}

		w, closeFn, err := outStream(outFile)
		checkError(err)
		defer func() { checkError(closeFn()) }()

		checkError(strainge.WriteKmerSet(w, ks, opt.Compress))

		if opt.Verbose {
			log.Infof("%s distinct k-mers (%s total) written to %s",
				humanize.Comma(int64(len(ks.Kmers))), humanize.Comma(ks.NKmers), outFile)
		}
	},
}

func init() {
	RootCmd.AddCommand(kmerizeCmd)

	kmerizeCmd.Flags().IntP("kmer-len", "k", strainge.DefaultK, "k-mer length")
	kmerizeCmd.Flags().Float64P("fingerprint-fraction", "F", 0,
		"if > 0, also compute a MinHash fingerprint of this sampling fraction")
	kmerizeCmd.Flags().IntP("limit", "L", 0, "stop after this many k-mers (0 = unlimited)")
	kmerizeCmd.Flags().IntP("prune-singletons", "P", 0,
		"drop singleton k-mers once their count exceeds this (0 = never)")
	kmerizeCmd.Flags().StringP("out-file", "o", "-", `output file ("-" for stdout)`)
}
