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

import "math"

// JukesCantorDistance converts an observed SNP rate into an estimated
// evolutionary distance under the Jukes-Cantor one-parameter model
// (variant_caller.py jukes_cantor_distance).
func JukesCantorDistance(snpRate float64) float64 {
	return -0.75 * math.Log(1-(4.0/3.0)*snpRate)
}

// KimuraDistance computes the Kimura two-parameter distance from
// transition and transversion fractions (variant_caller.py
// kimura_distance).
func KimuraDistance(transitions, transversions float64) float64 {
	return -0.5 * math.Log((1-2*transitions-transversions)*math.Sqrt(1-2*transversions))
}
