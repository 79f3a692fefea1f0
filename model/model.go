package model

import (
	"fmt"

	"vdjinfer/numeric"
)

// Model bundles the marginal probability tables of a recombination model
// (spec §3). All tables are validated non-negative, finite, and normalized
// per their axis convention before the model is exposed to inference.
type Model struct {
	VGenes []Gene
	DGenes []Gene
	JGenes []Gene

	PV  []float64   // marginal over V genes
	PDJ [][]float64 // joint over (D, J), row-major [D][J], globally normalized

	PDelVGivenV [][]float64 // [delV][V], each column (fixed V) normalizes to 1
	PDelJGivenJ [][]float64 // [delJ][J], each column normalizes to 1

	// PDelD3DelD5[d] is the [delD3][delD5] matrix conditioned on D gene d;
	// each such matrix normalizes to 1 independently (or stays all-zero).
	PDelD3DelD5 [][][]float64

	PInsVD []float64 // length distribution of VD insertions
	PInsDJ []float64 // length distribution of DJ insertions

	FirstNtBiasInsVD [4]float64
	FirstNtBiasInsDJ [4]float64

	MarkovCoefficientsVD [4][4]float64 // row-stochastic or all-zero rows
	MarkovCoefficientsDJ [4][4]float64

	ErrorRate float64
}

// Validate checks the external contract declared in spec §6: every
// probability table is non-negative and finite and normalized per its axis
// convention, error_rate is in [0,1), and Markov rows are row-stochastic or
// all-zero.
func (m *Model) Validate() error {
	if !numeric.SumsToOne(m.PV) {
		return fmt.Errorf("model: p_v does not sum to 1")
	}
	flatDJ := flatten(m.PDJ)
	if !numeric.SumsToOne(flatDJ) {
		return fmt.Errorf("model: p_dj does not sum to 1")
	}
	if err := validateConditional1(m.PDelVGivenV, "p_del_v_given_v"); err != nil {
		return err
	}
	if err := validateConditional1(m.PDelJGivenJ, "p_del_j_given_j"); err != nil {
		return err
	}
	for d, mat := range m.PDelD3DelD5 {
		flat := flatten(mat)
		if !numeric.SumsToOne(flat) {
			return fmt.Errorf("model: p_del_d3_del_d5[%d] is neither normalized nor all-zero", d)
		}
	}
	if !numeric.SumsToOne(m.PInsVD) {
		return fmt.Errorf("model: p_ins_vd does not sum to 1")
	}
	if !numeric.SumsToOne(m.PInsDJ) {
		return fmt.Errorf("model: p_ins_dj does not sum to 1")
	}
	if !numeric.SumsToOne(m.FirstNtBiasInsVD[:]) {
		return fmt.Errorf("model: first_nt_bias_ins_vd does not sum to 1")
	}
	if !numeric.SumsToOne(m.FirstNtBiasInsDJ[:]) {
		return fmt.Errorf("model: first_nt_bias_ins_dj does not sum to 1")
	}
	if err := validateTransition(m.MarkovCoefficientsVD, "markov_coefficients_vd"); err != nil {
		return err
	}
	if err := validateTransition(m.MarkovCoefficientsDJ, "markov_coefficients_dj"); err != nil {
		return err
	}
	if m.ErrorRate < 0 || m.ErrorRate >= 1 {
		return fmt.Errorf("model: error_rate %v out of [0,1)", m.ErrorRate)
	}
	return nil
}

// validateConditional1 checks that each column of a [value][condition]
// table normalizes to 1 (spec §4.1 2-D rule: conditional normalization).
func validateConditional1(table [][]float64, name string) error {
	if len(table) == 0 {
		return nil
	}
	nCond := len(table[0])
	for cond := 0; cond < nCond; cond++ {
		col := make([]float64, len(table))
		for i, row := range table {
			col[i] = row[cond]
		}
		if !numeric.SumsToOne(col) {
			return fmt.Errorf("model: %s column %d does not sum to 1", name, cond)
		}
	}
	return nil
}

func validateTransition(m [4][4]float64, name string) error {
	for i, row := range m {
		sum := 0.0
		for _, v := range row {
			if v < 0 {
				return fmt.Errorf("model: %s row %d has a negative entry", name, i)
			}
			sum += v
		}
		if sum != 0 && (sum < 1-numeric.EPSILON || sum > 1+numeric.EPSILON) {
			return fmt.Errorf("model: %s row %d is neither row-stochastic nor all-zero (sum=%v)", name, i, sum)
		}
	}
	return nil
}

func flatten(rows [][]float64) []float64 {
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
