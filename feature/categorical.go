package feature

import (
	"fmt"
	"math"

	"vdjinfer/numeric"
)

func log2(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	return math.Log2(p)
}

// CategoricalFeature1 is a marginal distribution over a single index,
// e.g. p(V). Cleanup normalizes the dirty accumulator to sum 1 (or
// uniform, if the accumulator is all-zero).
type CategoricalFeature1 struct {
	probas []float64
	dirty  []float64
}

// NewCategoricalFeature1 validates p and returns a Fresh feature.
func NewCategoricalFeature1(p []float64) (*CategoricalFeature1, error) {
	if !numeric.SumsToOne(p) {
		return nil, fmt.Errorf("categorical feature1: p does not sum to 1")
	}
	return &CategoricalFeature1{probas: append([]float64(nil), p...), dirty: make([]float64, len(p))}, nil
}

func (f *CategoricalFeature1) Dim() int { return len(f.probas) }

func (f *CategoricalFeature1) Likelihood(i int) float64 { return f.probas[i] }

func (f *CategoricalFeature1) LogLikelihood(i int) float64 { return log2(f.probas[i]) }

func (f *CategoricalFeature1) DirtyUpdate(i int, mass float64) { f.dirty[i] += mass }

func (f *CategoricalFeature1) Cleanup() (*CategoricalFeature1, error) {
	p, err := numeric.NormalizeDistribution1(f.dirty)
	if err != nil {
		return nil, fmt.Errorf("categorical feature1 cleanup: %w", err)
	}
	return &CategoricalFeature1{probas: p, dirty: make([]float64, len(p))}, nil
}

// AverageCategoricalFeature1 returns the elementwise mean of several
// independently-accumulated shards.
func AverageCategoricalFeature1(fs []*CategoricalFeature1) (*CategoricalFeature1, error) {
	if len(fs) == 0 {
		return nil, fmt.Errorf("categorical feature1 average: empty input")
	}
	n := len(fs[0].probas)
	avg := make([]float64, n)
	for _, f := range fs {
		for i, v := range f.probas {
			avg[i] += v / float64(len(fs))
		}
	}
	return &CategoricalFeature1{probas: avg, dirty: make([]float64, n)}, nil
}

// CategoricalFeature1g1 is a conditional distribution p(x|y): each column
// (fixed y) normalizes independently. A column whose dirty accumulator is
// all-zero stays all-zero after Cleanup, per spec §4.1.
type CategoricalFeature1g1 struct {
	probas [][]float64 // [x][y]
	dirty  [][]float64
}

// NewCategoricalFeature1g1 validates that every column of p sums to 1 (or is
// all-zero) and returns a Fresh feature.
func NewCategoricalFeature1g1(p [][]float64) (*CategoricalFeature1g1, error) {
	if len(p) == 0 {
		return &CategoricalFeature1g1{}, nil
	}
	nY := len(p[0])
	for y := 0; y < nY; y++ {
		col := make([]float64, len(p))
		for x, row := range p {
			col[x] = row[y]
		}
		if !numeric.SumsToOne(col) {
			return nil, fmt.Errorf("categorical feature1g1: column %d does not sum to 1", y)
		}
	}
	probas := make([][]float64, len(p))
	dirty := make([][]float64, len(p))
	for x, row := range p {
		probas[x] = append([]float64(nil), row...)
		dirty[x] = make([]float64, nY)
	}
	return &CategoricalFeature1g1{probas: probas, dirty: dirty}, nil
}

// Dim returns (nX, nY).
func (f *CategoricalFeature1g1) Dim() (int, int) {
	if len(f.probas) == 0 {
		return 0, 0
	}
	return len(f.probas), len(f.probas[0])
}

func (f *CategoricalFeature1g1) Likelihood(x, y int) float64 { return f.probas[x][y] }

func (f *CategoricalFeature1g1) LogLikelihood(x, y int) float64 { return log2(f.probas[x][y]) }

func (f *CategoricalFeature1g1) DirtyUpdate(x, y int, mass float64) { f.dirty[x][y] += mass }

func (f *CategoricalFeature1g1) Cleanup() (*CategoricalFeature1g1, error) {
	nX, nY := f.Dim()
	out := make([][]float64, nX)
	for x := range out {
		out[x] = make([]float64, nY)
	}
	for y := 0; y < nY; y++ {
		col := make([]float64, nX)
		for x := 0; x < nX; x++ {
			col[x] = f.dirty[x][y]
		}
		normCol, err := numeric.NormalizeDistributionDouble3Slices([][]float64{col})
		if err != nil {
			return nil, fmt.Errorf("categorical feature1g1 cleanup column %d: %w", y, err)
		}
		for x := 0; x < nX; x++ {
			out[x][y] = normCol[0][x]
		}
	}
	dirty := make([][]float64, nX)
	for x := range dirty {
		dirty[x] = make([]float64, nY)
	}
	return &CategoricalFeature1g1{probas: out, dirty: dirty}, nil
}

// AverageCategoricalFeature1g1 returns the elementwise mean of several
// shards.
func AverageCategoricalFeature1g1(fs []*CategoricalFeature1g1) (*CategoricalFeature1g1, error) {
	if len(fs) == 0 {
		return nil, fmt.Errorf("categorical feature1g1 average: empty input")
	}
	nX, nY := fs[0].Dim()
	out := make([][]float64, nX)
	for x := range out {
		out[x] = make([]float64, nY)
	}
	for _, f := range fs {
		for x := 0; x < nX; x++ {
			for y := 0; y < nY; y++ {
				out[x][y] += f.probas[x][y] / float64(len(fs))
			}
		}
	}
	dirty := make([][]float64, nX)
	for x := range dirty {
		dirty[x] = make([]float64, nY)
	}
	return &CategoricalFeature1g1{probas: out, dirty: dirty}, nil
}

// CategoricalFeature2 is a joint distribution over two indices, e.g. p(D,J),
// globally normalized.
type CategoricalFeature2 struct {
	probas [][]float64 // [x][y]
	dirty  [][]float64
}

// NewCategoricalFeature2 validates that p sums to 1 globally (or is
// all-zero, which is kept as given) and returns a Fresh feature.
func NewCategoricalFeature2(p [][]float64) (*CategoricalFeature2, error) {
	flat := flatten2(p)
	if !numeric.SumsToOne(flat) {
		return nil, fmt.Errorf("categorical feature2: p does not sum to 1")
	}
	probas := make([][]float64, len(p))
	dirty := make([][]float64, len(p))
	for i, row := range p {
		probas[i] = append([]float64(nil), row...)
		dirty[i] = make([]float64, len(row))
	}
	return &CategoricalFeature2{probas: probas, dirty: dirty}, nil
}

func (f *CategoricalFeature2) Dim() (int, int) {
	if len(f.probas) == 0 {
		return 0, 0
	}
	return len(f.probas), len(f.probas[0])
}

func (f *CategoricalFeature2) Likelihood(x, y int) float64 { return f.probas[x][y] }

func (f *CategoricalFeature2) LogLikelihood(x, y int) float64 { return log2(f.probas[x][y]) }

func (f *CategoricalFeature2) DirtyUpdate(x, y int, mass float64) { f.dirty[x][y] += mass }

func (f *CategoricalFeature2) Cleanup() (*CategoricalFeature2, error) {
	flat, err := numeric.NormalizeDistributionDouble2(flatten2(f.dirty))
	if err != nil {
		return nil, fmt.Errorf("categorical feature2 cleanup: %w", err)
	}
	nX, nY := f.Dim()
	out := make([][]float64, nX)
	dirty := make([][]float64, nX)
	for x := 0; x < nX; x++ {
		out[x] = flat[x*nY : (x+1)*nY]
		dirty[x] = make([]float64, nY)
	}
	return &CategoricalFeature2{probas: out, dirty: dirty}, nil
}

// AverageCategoricalFeature2 returns the elementwise mean of several shards.
func AverageCategoricalFeature2(fs []*CategoricalFeature2) (*CategoricalFeature2, error) {
	if len(fs) == 0 {
		return nil, fmt.Errorf("categorical feature2 average: empty input")
	}
	nX, nY := fs[0].Dim()
	out := make([][]float64, nX)
	for x := range out {
		out[x] = make([]float64, nY)
	}
	for _, f := range fs {
		for x := 0; x < nX; x++ {
			for y := 0; y < nY; y++ {
				out[x][y] += f.probas[x][y] / float64(len(fs))
			}
		}
	}
	dirty := make([][]float64, nX)
	for x := range dirty {
		dirty[x] = make([]float64, nY)
	}
	return &CategoricalFeature2{probas: out, dirty: dirty}, nil
}

func flatten2(rows [][]float64) []float64 {
	n := 0
	for _, r := range rows {
		n += len(r)
	}
	out := make([]float64, 0, n)
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

// CategoricalFeature2g1 is a joint distribution over two indices conditioned
// on a third, e.g. p(delD3, delD5 | D): each z-slice normalizes
// independently and stays all-zero if its dirty accumulator is all-zero.
type CategoricalFeature2g1 struct {
	probas [][][]float64 // [z][x][y]
	dirty  [][][]float64
}

// NewCategoricalFeature2g1 validates that every z-slice of p sums to 1 (or
// is all-zero) and returns a Fresh feature.
func NewCategoricalFeature2g1(p [][][]float64) (*CategoricalFeature2g1, error) {
	for z, slice := range p {
		if !numeric.SumsToOne(flatten2(slice)) {
			return nil, fmt.Errorf("categorical feature2g1: slice %d does not sum to 1", z)
		}
	}
	probas := make([][][]float64, len(p))
	dirty := make([][][]float64, len(p))
	for z, slice := range p {
		probas[z] = make([][]float64, len(slice))
		dirty[z] = make([][]float64, len(slice))
		for x, row := range slice {
			probas[z][x] = append([]float64(nil), row...)
			dirty[z][x] = make([]float64, len(row))
		}
	}
	return &CategoricalFeature2g1{probas: probas, dirty: dirty}, nil
}

// Dim returns (nZ, nX, nY).
func (f *CategoricalFeature2g1) Dim() (int, int, int) {
	if len(f.probas) == 0 {
		return 0, 0, 0
	}
	nX := len(f.probas[0])
	nY := 0
	if nX > 0 {
		nY = len(f.probas[0][0])
	}
	return len(f.probas), nX, nY
}

func (f *CategoricalFeature2g1) Likelihood(x, y, z int) float64 { return f.probas[z][x][y] }

func (f *CategoricalFeature2g1) LogLikelihood(x, y, z int) float64 {
	return log2(f.probas[z][x][y])
}

func (f *CategoricalFeature2g1) DirtyUpdate(x, y, z int, mass float64) {
	f.dirty[z][x][y] += mass
}

func (f *CategoricalFeature2g1) Cleanup() (*CategoricalFeature2g1, error) {
	nZ, nX, nY := f.Dim()
	out := make([][][]float64, nZ)
	dirty := make([][][]float64, nZ)
	for z := 0; z < nZ; z++ {
		normed, err := numeric.NormalizeDistributionDouble2(flatten2(f.dirty[z]))
		if err != nil {
			return nil, fmt.Errorf("categorical feature2g1 cleanup slice %d: %w", z, err)
		}
		// NormalizeDistributionDouble2 falls back to uniform on an
		// all-zero slice; the conditional convention requires the
		// slice to stay all-zero instead (spec §4.1).
		if allZero(f.dirty[z]) {
			normed = make([]float64, nX*nY)
		}
		out[z] = make([][]float64, nX)
		dirty[z] = make([][]float64, nX)
		for x := 0; x < nX; x++ {
			out[z][x] = normed[x*nY : (x+1)*nY]
			dirty[z][x] = make([]float64, nY)
		}
	}
	return &CategoricalFeature2g1{probas: out, dirty: dirty}, nil
}

// AverageCategoricalFeature2g1 returns the elementwise mean of several
// shards.
func AverageCategoricalFeature2g1(fs []*CategoricalFeature2g1) (*CategoricalFeature2g1, error) {
	if len(fs) == 0 {
		return nil, fmt.Errorf("categorical feature2g1 average: empty input")
	}
	nZ, nX, nY := fs[0].Dim()
	out := make([][][]float64, nZ)
	dirty := make([][][]float64, nZ)
	for z := 0; z < nZ; z++ {
		out[z] = make([][]float64, nX)
		dirty[z] = make([][]float64, nX)
		for x := 0; x < nX; x++ {
			out[z][x] = make([]float64, nY)
			dirty[z][x] = make([]float64, nY)
		}
	}
	for _, f := range fs {
		for z := 0; z < nZ; z++ {
			for x := 0; x < nX; x++ {
				for y := 0; y < nY; y++ {
					out[z][x][y] += f.probas[z][x][y] / float64(len(fs))
				}
			}
		}
	}
	return &CategoricalFeature2g1{probas: out, dirty: dirty}, nil
}

func allZero(rows [][]float64) bool {
	for _, r := range rows {
		for _, v := range r {
			if v != 0 {
				return false
			}
		}
	}
	return true
}
