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

package strainge

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/pgzip"
)

// MainVersion and MinorVersion identify the container format below.
const (
	MainVersion  uint8 = 1
	MinorVersion uint8 = 0
)

// Magic is the 8-byte signature at the start of every single-set
// container (spec §4.B persist/load).
var Magic = [8]byte{'S', 'T', 'R', 'G', 'K', 'M', 'R', '1'}

// CollectionMagic signatures a container holding several named k-mer
// sets, one per pan-genome strain (spec §5.C database).
var CollectionMagic = [8]byte{'S', 'T', 'R', 'G', 'D', 'B', '0', '1'}

const (
	flagCompressed  uint32 = 1 << 0
	flagFingerprint uint32 = 1 << 1
)

// ErrInvalidFileFormat means the magic number didn't match.
var ErrInvalidFileFormat = errors.New("strainge: invalid container format")

// ErrUnsupportedVersion means the container was written by an
// incompatible future (or otherwise unrecognised) format version.
var ErrUnsupportedVersion = errors.New("strainge: unsupported container version")

// ErrChecksumMismatch means the xxhash checksum recorded in the
// container's header didn't match its body, i.e. the file is truncated
// or corrupt.
var ErrChecksumMismatch = errors.New("strainge: container checksum mismatch")

var be = binary.BigEndian

type containerHeader struct {
	MainVersion, MinorVersion uint8
	K                         uint8
	Flag                      uint32
	FingerprintFraction       float64
	NSeqs, NBases, NKmers     int64
	Singletons                int64
	NStored, NFingerprint     uint64
	Checksum                  uint64
}

// WriteKmerSet serializes ks to w as a single self-contained container:
// an 8-byte magic number, a fixed header of scalar fields, and the
// Kmers/Counts/(optional) Fingerprint arrays, gzip-compressed when
// compress is true. The header carries an xxhash64 checksum of the
// uncompressed body (spec §4.B persist).
func WriteKmerSet(w io.Writer, ks *KmerSet, compress bool) error {
	var body bytes.Buffer
	if err := binary.Write(&body, be, ks.Kmers); err != nil {
		return NewExternalFailure("", err)
	}
	if err := binary.Write(&body, be, ks.Counts); err != nil {
		return NewExternalFailure("", err)
	}
	if ks.Fingerprint != nil {
		if err := binary.Write(&body, be, ks.Fingerprint); err != nil {
			return NewExternalFailure("", err)
		}
	}

	var flag uint32
	if compress {
		flag |= flagCompressed
	}
	var nFingerprint uint64
	if ks.Fingerprint != nil {
		flag |= flagFingerprint
		nFingerprint = uint64(len(ks.Fingerprint))
	}

	hdr := containerHeader{
		MainVersion:         MainVersion,
		MinorVersion:        MinorVersion,
		K:                   uint8(ks.K),
		Flag:                flag,
		FingerprintFraction: ks.FingerprintFraction,
		NSeqs:               ks.NSeqs,
		NBases:              ks.NBases,
		NKmers:              ks.NKmers,
		Singletons:          ks.Singletons,
		NStored:             uint64(len(ks.Kmers)),
		NFingerprint:        nFingerprint,
		Checksum:            xxhash.Sum64(body.Bytes()),
	}

	if err := binary.Write(w, be, Magic); err != nil {
		return NewExternalFailure("", err)
	}
	if err := binary.Write(w, be, hdr); err != nil {
		return NewExternalFailure("", err)
	}

	if compress {
		gz := pgzip.NewWriter(w)
		if _, err := gz.Write(body.Bytes()); err != nil {
			return NewExternalFailure("", err)
		}
		if err := gz.Close(); err != nil {
			return NewExternalFailure("", err)
		}
		return nil
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return NewExternalFailure("", err)
	}
	return nil
}

// ReadKmerSet deserializes a container previously written by
// WriteKmerSet, validating its magic number, version, and checksum.
func ReadKmerSet(r io.Reader) (*KmerSet, error) {
	var m [8]byte
	if err := binary.Read(r, be, &m); err != nil {
		return nil, NewExternalFailure("", err)
	}
	if m != Magic {
		return nil, newError(BadInput, ErrInvalidFileFormat)
	}

	var hdr containerHeader
	if err := binary.Read(r, be, &hdr); err != nil {
		return nil, NewExternalFailure("", err)
	}
	if hdr.MainVersion != MainVersion {
		return nil, newError(BadInput, ErrUnsupportedVersion)
	}

	// Read exactly this container's body, so that a following container
	// in the same stream (see ReadCollection) is left unread.
	size := int64(hdr.NStored) * 12
	if hdr.Flag&flagFingerprint != 0 {
		size += int64(hdr.NFingerprint) * 8
	}
	var bodyReader io.Reader = r
	if hdr.Flag&flagCompressed != 0 {
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return nil, newError(BadInput, err)
		}
		defer gz.Close()
		gz.Multistream(false)
		bodyReader = gz
	}

	body, err := io.ReadAll(io.LimitReader(bodyReader, size))
	if err != nil {
		return nil, NewExternalFailure("", err)
	}
	if xxhash.Sum64(body) != hdr.Checksum {
		return nil, newError(BadInput, ErrChecksumMismatch)
	}

	br := bytes.NewReader(body)
	ks := &KmerSet{
		K:                   int(hdr.K),
		NSeqs:               hdr.NSeqs,
		NBases:              hdr.NBases,
		NKmers:              hdr.NKmers,
		Singletons:          hdr.Singletons,
		FingerprintFraction: hdr.FingerprintFraction,
	}

	ks.Kmers = make([]uint64, hdr.NStored)
	if err := binary.Read(br, be, ks.Kmers); err != nil {
		return nil, NewExternalFailure("", err)
	}
	ks.Counts = make([]uint32, hdr.NStored)
	if err := binary.Read(br, be, ks.Counts); err != nil {
		return nil, NewExternalFailure("", err)
	}
	if hdr.Flag&flagFingerprint != 0 {
		ks.Fingerprint = make([]uint64, hdr.NFingerprint)
		if err := binary.Read(br, be, ks.Fingerprint); err != nil {
			return nil, NewExternalFailure("", err)
		}
	}
	return ks, nil
}

// WriteCollection serializes several named k-mer sets into a single
// container, one per pan-genome strain: a small index of names
// followed by a sequence of per-strain WriteKmerSet records (spec
// §5.C database, grounded on the teacher's multi-name index format).
func WriteCollection(w io.Writer, names []string, sets []*KmerSet, compress bool) error {
	if len(names) != len(sets) {
		return newError(BadInput, fmt.Errorf("strainge: %d names for %d k-mer sets", len(names), len(sets)))
	}

	if err := binary.Write(w, be, CollectionMagic); err != nil {
		return NewExternalFailure("", err)
	}
	if err := binary.Write(w, be, uint32(len(names))); err != nil {
		return NewExternalFailure("", err)
	}

	joined := strings.Join(names, "\n")
	if len(names) > 0 {
		joined += "\n"
	}
	if err := binary.Write(w, be, uint32(len(joined))); err != nil {
		return NewExternalFailure("", err)
	}
	if _, err := io.WriteString(w, joined); err != nil {
		return NewExternalFailure("", err)
	}

	for _, ks := range sets {
		if err := WriteKmerSet(w, ks, compress); err != nil {
			return err
		}
	}
	return nil
}

// ReadCollection reads back a container written by WriteCollection.
func ReadCollection(r io.Reader) (names []string, sets []*KmerSet, err error) {
	if _, ok := r.(io.ByteReader); !ok {
		r = bufio.NewReader(r)
	}
	var m [8]byte
	if err := binary.Read(r, be, &m); err != nil {
		return nil, nil, NewExternalFailure("", err)
	}
	if m != CollectionMagic {
		return nil, nil, newError(BadInput, ErrInvalidFileFormat)
	}

	var n uint32
	if err := binary.Read(r, be, &n); err != nil {
		return nil, nil, NewExternalFailure("", err)
	}

	var nameBytes uint32
	if err := binary.Read(r, be, &nameBytes); err != nil {
		return nil, nil, NewExternalFailure("", err)
	}
	buf := make([]byte, nameBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, nil, NewExternalFailure("", err)
	}
	if n > 0 {
		names = strings.Split(strings.TrimSuffix(string(buf), "\n"), "\n")
	}
	if uint32(len(names)) != n {
		return nil, nil, newError(BadInput, ErrInvalidFileFormat)
	}

	sets = make([]*KmerSet, n)
	for i := uint32(0); i < n; i++ {
		ks, err := ReadKmerSet(r)
		if err != nil {
			return nil, nil, err
		}
		sets[i] = ks
	}
	return names, sets, nil
}
