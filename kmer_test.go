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

package strainge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []string{"AC", "ACGT", "TTTTTTTTTTTTTTTTTTTTT", "acgtACGT"}
	for _, s := range cases {
		code, err := Encode([]byte(s))
		require.NoError(t, err)
		got := Decode(code, len(s))
		assert.Equal(t, []byte(strings.ToUpper(s)), got)
	}
}

func TestEncodeRejectsNonACGT(t *testing.T) {
	_, err := Encode([]byte("ACGN"))
	assert.ErrorIs(t, err, ErrIllegalBase)

	_, err = Encode([]byte("ACGW"))
	assert.ErrorIs(t, err, ErrIllegalBase)
}

func TestEncodeRejectsBadLength(t *testing.T) {
	_, err := Encode([]byte("A"))
	assert.ErrorIs(t, err, ErrKRange)

	long := make([]byte, MaxK+1)
	for i := range long {
		long[i] = 'A'
	}
	_, err = Encode(long)
	assert.ErrorIs(t, err, ErrKRange)
}

func TestReverseComplement(t *testing.T) {
	code, err := Encode([]byte("ACGT"))
	require.NoError(t, err)
	rc := ReverseComplement(code, 4)
	assert.Equal(t, "ACGT", string(Decode(rc, 4))) // ACGT is its own reverse complement

	code, err = Encode([]byte("AAAA"))
	require.NoError(t, err)
	rc = ReverseComplement(code, 4)
	assert.Equal(t, "TTTT", string(Decode(rc, 4)))
}

func TestCanonicalIsStrandIndependent(t *testing.T) {
	fwd, err := Encode([]byte("GATTACA"))
	require.NoError(t, err)
	rev := ReverseComplement(fwd, 7)

	assert.Equal(t, Canonical(fwd, 7), Canonical(rev, 7))
}

func TestKmerWrapper(t *testing.T) {
	km, err := NewKmer([]byte("ACGTACG"))
	require.NoError(t, err)
	assert.Equal(t, "ACGTACG", km.String())

	canon := km.Canonical()
	assert.Equal(t, canon.Code, Canonical(km.Code, km.K))
}

func TestValidK(t *testing.T) {
	assert.False(t, ValidK(1))
	assert.True(t, ValidK(2))
	assert.True(t, ValidK(31))
	assert.False(t, ValidK(32))
}
