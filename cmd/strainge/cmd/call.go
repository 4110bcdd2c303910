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
	"os"

	"github.com/grailbio/hts/bam"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/spf13/cobra"

	gsam "github.com/grailbio/hts/sam"

	"github.com/strainge-go/strainge/reference"
	"github.com/strainge-go/strainge/variantcall"
)

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Call per-scaffold variant statistics from a read alignment",
	Long: `Call per-scaffold variant statistics from a read alignment

Reads a reference FASTA (and its optional ".meta.json" repetitiveness
sidecar), then runs the two-pass variant caller of spec §4.G against
every record in the given BAM file, writing the per-scaffold summary
report of spec §4.H.
`,
	Run: func(cmd *cobra.Command, args []string) {
		refFile := getFlagString(cmd, "reference")
		bamFile := getFlagString(cmd, "bam")

		ref := loadReference(refFile)

		var meta *reference.Metadata
		metaPath := reference.MetadataPath(refFile)
		if m, err := reference.LoadMetadata(metaPath); err == nil {
			meta = m
		} else if !os.IsNotExist(err) {
			checkError(errors.Wrap(err, metaPath))
		}

		records := readBAM(bamFile)

		cfg := variantcall.DefaultConfig()
		cfg.MinMappingQuality = getFlagInt(cmd, "min-mapq")
		cfg.MinQual = getFlagInt(cmd, "min-qual")
		cfg.MinPileupQual = uint32(getFlagInt(cmd, "min-pileup-qual"))
		cfg.MinQualFrac = getFlagFloat64(cmd, "min-qual-frac")
		cfg.MinGapSize = getFlagInt(cmd, "min-gap-size")

		caller := variantcall.NewCaller(cfg)
		data, err := caller.Process(ref, meta, records)
		checkError(err)

		rows := data.Summarize()
		checkError(variantcall.WriteSummary(os.Stdout, rows))
	},
}

// loadReference reads every record of a FASTA file into a
// reference.Reference (spec §4.E).
func loadReference(path string) *reference.Reference {
	seq.ValidateSeq = false
	r, err := fastx.NewDefaultReader(path)
	checkError(errors.Wrap(err, path))

	var scaffolds []reference.Scaffold
	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			checkError(errors.Wrap(err, path))
		}
		scaffolds = append(scaffolds, reference.Scaffold{
			Name:   rec.ID,
			Length: len(rec.Seq.Seq),
			Seq:    append([]byte(nil), rec.Seq.Seq...),
		})
	}
	return reference.New(path, scaffolds)
}

// readBAM decodes every record of a BAM file into memory (spec §4.G:
// the driver takes the whole alignment, not a streaming cursor).
func readBAM(path string) []*gsam.Record {
	f, err := os.Open(path)
	checkError(errors.Wrap(err, path))
	defer f.Close()

	threads := 1
	r, err := bam.NewReader(f, threads)
	checkError(errors.Wrap(err, path))
	defer r.Close()

	var records []*gsam.Record
	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			checkError(errors.Wrap(err, path))
		}
		records = append(records, rec)
	}
	return records
}

func init() {
	RootCmd.AddCommand(callCmd)

	callCmd.Flags().StringP("reference", "r", "", "reference FASTA (required)")
	callCmd.MarkFlagRequired("reference")
	callCmd.Flags().StringP("bam", "b", "", "sorted BAM alignment against the reference (required)")
	callCmd.MarkFlagRequired("bam")

	cfg := variantcall.DefaultConfig()
	callCmd.Flags().Int("min-mapq", cfg.MinMappingQuality, "minimum mapping quality for a read's bases to count as allele evidence (lower-quality reads are still counted as low-mapping-quality coverage)")
	callCmd.Flags().Int("min-qual", cfg.MinQual, "minimum base quality for a base to count toward a pileup")
	callCmd.Flags().Int("min-pileup-qual", int(cfg.MinPileupQual), "minimum summed pileup quality to call a strong allele")
	callCmd.Flags().Float64("min-qual-frac", cfg.MinQualFrac, "minimum fraction of pileup quality an allele needs to be called")
	callCmd.Flags().Int("min-gap-size", cfg.MinGapSize, "minimum run of positions without allele evidence reported as a gap, scaled up by the Lander-Waterman expected coverage")
}
