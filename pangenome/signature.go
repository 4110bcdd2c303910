// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
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

package pangenome

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/strainge-go/strainge"
)

// signatureVersion is the on-disk format of a SignatureIndex.
const signatureVersion uint8 = 1

var signatureMagic = [8]byte{'.', 's', 't', 'r', 's', 'i', 'g', 'x'}

// ErrInvalidSignatureFile means the magic number or version didn't
// match.
var ErrInvalidSignatureFile = errors.New("pangenome: invalid signature index file")

// ErrTruncatedSignatureFile means fewer rows were present than the
// header promised.
var ErrTruncatedSignatureFile = errors.New("pangenome: truncated signature index file")

// SignatureIndex is a per-union-k-mer bitset recording which strains
// contain it: row i (over pg.Union.Kmers[i]) has bit j set if strain
// Names[j] contains that k-mer. It lets a caller cheaply screen which
// strains a sample's k-mers could possibly belong to before paying for
// the full per-strain scoring pass of spec §4.D, the same role
// unikmer's bit-sliced LSH index plays for its own `Search` command.
type SignatureIndex struct {
	K          int
	Names      []string
	NumSigs    uint64
	rowBytes   int
	rows       [][]byte
}

// BuildSignatureIndex loads every strain in pg once and records its
// k-mer membership against the shared union set.
func BuildSignatureIndex(pg *PanGenome) (*SignatureIndex, error) {
	rowBytes := (len(pg.Names) + 7) / 8
	rows := make([][]byte, len(pg.Union.Kmers))
	for i := range rows {
		rows[i] = make([]byte, rowBytes)
	}

	for si, name := range pg.Names {
		s, err := pg.LoadStrain(name)
		if err != nil {
			return nil, err
		}
		for _, ix := range strainge.IntersectIndex(pg.Union.Kmers, s.KS.Kmers) {
			rows[ix][si/8] |= 1 << uint(si%8)
		}
	}

	return &SignatureIndex{
		K:        pg.Union.K,
		Names:    append([]string(nil), pg.Names...),
		NumSigs:  uint64(len(rows)),
		rowBytes: rowBytes,
		rows:     rows,
	}, nil
}

// Candidates screens which strains could contain a sample: given the
// sample's k-mer indices into the union set (as returned by
// strainge.IntersectIndex(pg.Union.Kmers, sample.KS.Kmers)), it returns
// a per-strain count of how many of those k-mers the strain shares.
// Strains absent from the result share none of them and can be safely
// skipped before the expensive scoreStrain pass.
func (idx *SignatureIndex) Candidates(unionIndices []int) map[string]int {
	counts := make(map[string]int)
	for _, rowIx := range unionIndices {
		if rowIx < 0 || rowIx >= len(idx.rows) {
			continue
		}
		row := idx.rows[rowIx]
		for si, name := range idx.Names {
			if row[si/8]&(1<<uint(si%8)) != 0 {
				counts[name]++
			}
		}
	}
	return counts
}

// Contains reports whether strain si's bit is set on union row rowIx.
func (idx *SignatureIndex) Contains(rowIx, si int) bool {
	if rowIx < 0 || rowIx >= len(idx.rows) || si < 0 || si >= len(idx.Names) {
		return false
	}
	return idx.rows[rowIx][si/8]&(1<<uint(si%8)) != 0
}

// WriteSignatureIndex serializes idx to w (spec §6 "pan-genome
// containment sidecar").
func WriteSignatureIndex(w io.Writer, idx *SignatureIndex) error {
	be := binary.BigEndian

	if err := binary.Write(w, be, signatureMagic); err != nil {
		return err
	}
	if err := binary.Write(w, be, [4]uint8{signatureVersion, uint8(idx.K), 0, 0}); err != nil {
		return err
	}
	if err := binary.Write(w, be, idx.NumSigs); err != nil {
		return err
	}

	var namesLen uint32
	for _, name := range idx.Names {
		namesLen += uint32(len(name)) + 1
	}
	if err := binary.Write(w, be, namesLen); err != nil {
		return err
	}
	for _, name := range idx.Names {
		if _, err := w.Write([]byte(name + "\n")); err != nil {
			return err
		}
	}

	for _, row := range idx.rows {
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// ReadSignatureIndex deserializes a SignatureIndex written by
// WriteSignatureIndex.
func ReadSignatureIndex(r io.Reader) (*SignatureIndex, error) {
	be := binary.BigEndian

	var magic [8]byte
	if err := binary.Read(r, be, &magic); err != nil {
		return nil, err
	}
	if magic != signatureMagic {
		return nil, ErrInvalidSignatureFile
	}

	var meta [4]uint8
	if err := binary.Read(r, be, &meta); err != nil {
		return nil, err
	}
	if meta[0] != signatureVersion {
		return nil, fmt.Errorf("pangenome: unsupported signature index version %d", meta[0])
	}
	k := int(meta[1])

	var numSigs uint64
	if err := binary.Read(r, be, &numSigs); err != nil {
		return nil, err
	}

	var namesLen uint32
	if err := binary.Read(r, be, &namesLen); err != nil {
		return nil, err
	}
	namesData := make([]byte, namesLen)
	if _, err := io.ReadFull(r, namesData); err != nil {
		return nil, err
	}
	names := strings.Split(string(namesData), "\n")
	names = names[:len(names)-1]

	rowBytes := (len(names) + 7) / 8
	rows := make([][]byte, numSigs)
	for i := range rows {
		row := make([]byte, rowBytes)
		n, err := io.ReadFull(r, row)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, ErrTruncatedSignatureFile
			}
			return nil, err
		}
		if n != rowBytes {
			return nil, ErrTruncatedSignatureFile
		}
		rows[i] = row
	}

	return &SignatureIndex{K: k, Names: names, NumSigs: numSigs, rowBytes: rowBytes, rows: rows}, nil
}
