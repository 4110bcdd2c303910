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

package search

import (
	"bufio"
	"fmt"
	"io"
)

// WriteResult renders a Result as the two tab-separated tables of spec
// §6: a one-line sample summary, a blank line, then one row per
// reported strain. Column order and the 3-decimal float precision match
// the reference StrainGST report. Rows are written as literal
// tab-separated text (through a stdlib bufio.Writer), not as an aligned
// display; cmd/strainge/cmd offers an aligned rendering of the same
// data via shenwei356/stable for interactive use.
func WriteResult(w io.Writer, r *Result) error {
	tw := bufio.NewWriter(w)

	fmt.Fprintln(tw, "sample\ttotalkmers\tdistinct\tpkmers\tpkcov\tpan%")
	fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.3f\t%.3f\n",
		r.SampleName, r.TotalKmers, r.DistinctKmers, r.PanKmers, r.PanKmerCov, r.PanFraction)
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	tw = bufio.NewWriter(w)
	fmt.Fprintln(tw, "i\tstrain\tgkmers\tikmers\tskmers\tcov\tkcov\tgcov\tacct\teven\tscore0\tspec\twcov\tscore")
	for _, it := range r.Iterations {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\n",
			iterationIndex(it, r.MultiRank),
			it.Strain, it.Gkmers, it.Ikmers, it.Skmers,
			it.Cov, it.Kcov, it.Gcov, it.Acct, it.Even, it.Score0, it.Spec, it.Wcov, it.Score)
	}
	return tw.Flush()
}

// iterationIndex renders "i" or "i.rank" depending on whether this run
// reported more than one candidate per iteration.
func iterationIndex(it Iteration, multiRank bool) string {
	if !multiRank {
		return fmt.Sprintf("%d", it.Round)
	}
	return fmt.Sprintf("%d.%d", it.Round, it.Rank)
}
