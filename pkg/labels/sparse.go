package labels

import "github.com/haivivi/speechbatch/pkg/errs"

// Sparse is a ragged batch of label sequences in coordinate form.
//
// Indices are (row, column) pairs sorted lexicographically, Values[k] is the
// class id at Indices[k], and Shape is (batch size, longest row). Each row's
// columns are contiguous from 0, so the encoding is lossless.
type Sparse struct {
	Indices [][2]int64 `msgpack:"indices" json:"indices"`
	Values  []int32    `msgpack:"values" json:"values"`
	Shape   [2]int64   `msgpack:"shape" json:"shape"`
}

// NewSparse validates the triple and returns it as a Sparse.
func NewSparse(indices [][2]int64, values []int32, shape [2]int64) (*Sparse, error) {
	s := &Sparse{Indices: indices, Values: values, Shape: shape}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the ordering, bounds and count invariants.
func (s *Sparse) Validate() error {
	if s.Shape[0] < 0 || s.Shape[1] < 0 {
		return errs.Encoding("labels: negative sparse shape %v", s.Shape)
	}
	if len(s.Indices) != len(s.Values) {
		return errs.Encoding("labels: %d indices but %d values", len(s.Indices), len(s.Values))
	}
	for k, ix := range s.Indices {
		if ix[0] < 0 || ix[0] >= s.Shape[0] || ix[1] < 0 || ix[1] >= s.Shape[1] {
			return errs.Encoding("labels: index %v at %d outside shape %v", ix, k, s.Shape)
		}
		if k == 0 {
			continue
		}
		p := s.Indices[k-1]
		if ix[0] < p[0] || (ix[0] == p[0] && ix[1] <= p[1]) {
			return errs.Encoding("labels: index %v at %d not after %v", ix, k, p)
		}
	}
	return nil
}

// Rows returns the batch size.
func (s *Sparse) Rows() int {
	return int(s.Shape[0])
}

// ToSparse packs batch into coordinate form. Sequences are never truncated;
// the second shape dimension is the longest sequence length.
func ToSparse(batch [][]int32) *Sparse {
	n, longest := 0, 0
	for _, seq := range batch {
		n += len(seq)
		longest = max(longest, len(seq))
	}
	s := &Sparse{
		Indices: make([][2]int64, 0, n),
		Values:  make([]int32, 0, n),
		Shape:   [2]int64{int64(len(batch)), int64(longest)},
	}
	for i, seq := range batch {
		for j, v := range seq {
			s.Indices = append(s.Indices, [2]int64{int64(i), int64(j)})
			s.Values = append(s.Values, v)
		}
	}
	return s
}

// FromSparse unpacks s into one sequence per row. Rows with no entries come
// back as empty, non-nil slices. Column gaps are rejected since they cannot
// come from ToSparse.
func FromSparse(s *Sparse) ([][]int32, error) {
	if s == nil {
		return nil, errs.Encoding("labels: nil sparse batch")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	rows := make([][]int32, s.Shape[0])
	for i := range rows {
		rows[i] = []int32{}
	}
	for k, ix := range s.Indices {
		row := rows[ix[0]]
		if int64(len(row)) != ix[1] {
			return nil, errs.Encoding("labels: row %d has a gap before column %d", ix[0], ix[1])
		}
		rows[ix[0]] = append(row, s.Values[k])
	}
	return rows, nil
}
