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

package pangenome

import (
	"io"
	"os"
	"sort"

	"github.com/strainge-go/strainge"
)

// FileStore is a Store backed by a single on-disk database container
// written by strainge.WriteCollection: a top-level union k-mer set
// followed by one named group per strain (spec §6). The whole file is
// read into memory on NewFileStore, since the single-pass container
// format has no random-access index; LoadStrain and the PanGenome's
// own cache are what make repeated strain lookups cheap afterwards.
type FileStore struct {
	union  *strainge.KmerSet
	names  []string
	strain map[string]*strainge.KmerSet
}

// NewFileStore opens path and loads a union set named "" followed by
// the named per-strain groups written by strainge.WriteCollection.
func NewFileStore(path string) (*FileStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, strainge.NewExternalFailure(path, err)
	}
	defer f.Close()
	return readFileStore(f, path)
}

func readFileStore(r io.Reader, path string) (*FileStore, error) {
	names, sets, err := strainge.ReadCollection(r)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, strainge.NewBadInput(os.ErrInvalid)
	}

	fs := &FileStore{
		union:  sets[0],
		names:  names[1:],
		strain: make(map[string]*strainge.KmerSet, len(names)-1),
	}
	for i, name := range names[1:] {
		fs.strain[name] = sets[i+1]
	}
	return fs, nil
}

// Union returns the database's top-level union k-mer set.
func (fs *FileStore) Union() (*strainge.KmerSet, error) {
	return fs.union, nil
}

// StrainNames returns the names of every strain group in the store.
func (fs *FileStore) StrainNames() []string {
	return append([]string(nil), fs.names...)
}

// LoadStrain returns the k-mer set for name, or nil if absent.
func (fs *FileStore) LoadStrain(name string) (*strainge.KmerSet, error) {
	ks, ok := fs.strain[name]
	if !ok {
		return nil, nil
	}
	return ks, nil
}

// WriteDatabase serializes a union k-mer set and its named per-strain
// sets into the container format FileStore reads back (spec §6
// "database file adds one named group per strain"). The union occupies
// the reserved empty-string name so FileStore can tell it apart from a
// real strain.
func WriteDatabase(w io.Writer, union *strainge.KmerSet, strains map[string]*strainge.KmerSet, compress bool) error {
	strainNames := make([]string, 0, len(strains))
	for name := range strains {
		strainNames = append(strainNames, name)
	}
	sort.Strings(strainNames)

	names := make([]string, 0, len(strains)+1)
	sets := make([]*strainge.KmerSet, 0, len(strains)+1)

	names = append(names, "")
	sets = append(sets, union)
	for _, name := range strainNames {
		names = append(names, name)
		sets = append(sets, strains[name])
	}
	return strainge.WriteCollection(w, names, sets, compress)
}
