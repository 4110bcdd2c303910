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

package variantcall

import (
	"bufio"
	"fmt"
	"io"
)

// WriteSummary renders rows (as returned by VariantCallData.Summarize,
// one per scaffold followed by a final "TOTAL" row) as the
// tab-separated report of spec §6 "Output of variant caller".
func WriteSummary(w io.Writer, rows []ScaffoldSummary) error {
	tw := bufio.NewWriter(w)
	fmt.Fprintln(tw, "scaffold\tlength\trepetitiveness\tcoverage\tmedian\tuReads\tabundance\t"+
		"callable\tcallable%\tconfirmed\tconfirmed%\tsnps\tsnp%\tmulti\tmulti%\t"+
		"lowmq\tlowmq%\thighcov\thighcov%\tgaps\tgaplen\tts\tts%\ttv\ttv%")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.3f\t%.1f\t%d\t%.4f\t"+
			"%d\t%.2f\t%d\t%.2f\t%d\t%.2f\t%d\t%.2f\t"+
			"%d\t%.2f\t%d\t%.2f\t%d\t%d\t%d\t%.2f\t%d\t%.2f\n",
			r.Name, r.Length, r.Repetitiveness, r.Coverage, r.Median, r.UniqueReads, r.Abundance,
			r.Callable, r.CallablePct, r.Confirmed, r.ConfirmedPct, r.SNPs, r.SNPPct, r.Multi, r.MultiPct,
			r.LowMQ, r.LowMQPct, r.HighCoverage, r.HighCoveragePct, r.GapCount, r.GapLength,
			r.Transitions, r.TransitionsPct, r.Transversions, r.TransversionsPct)
	}
	return tw.Flush()
}
