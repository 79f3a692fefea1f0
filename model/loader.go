package model

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Loader is the model-file-parsing collaborator declared in spec §6: given
// recombination-parameter, marginals, and V/J anchor file paths, it
// produces a validated Model. Parsing format and anchor-file conventions are
// explicitly out of scope for this module (spec §1); this package ships
// only the interface plus a minimal reference implementation sufficient to
// exercise Model end to end in tests and the CLI.
type Loader interface {
	Load(paramsPath, marginalsPath, vAnchorsPath, jAnchorsPath string) (*Model, error)
}

// AnchorLoader is a minimal reference Loader reading the anchor files as
// plain CSV (name,seq,functional[,cdr3_pos]) and the marginals file as
// "name=v1,v2,..." lines, with "name[i]=..." lines supplying the rows of
// 2-D/3-D tables (see readTables). paramsPath is read as the D-gene anchor
// CSV in the same format. It is intentionally small: production anchor
// and parameter file formats are an external concern per spec §6.
type AnchorLoader struct{}

func (AnchorLoader) Load(paramsPath, marginalsPath, vAnchorsPath, jAnchorsPath string) (*Model, error) {
	vGenes, err := readAnchors(vAnchorsPath)
	if err != nil {
		return nil, fmt.Errorf("load v anchors: %w", err)
	}
	jGenes, err := readAnchors(jAnchorsPath)
	if err != nil {
		return nil, fmt.Errorf("load j anchors: %w", err)
	}

	tables, rows, err := readTables(marginalsPath)
	if err != nil {
		return nil, fmt.Errorf("load marginals: %w", err)
	}
	dGenes, err := readAnchors(paramsPath)
	if err != nil {
		return nil, fmt.Errorf("load d genes: %w", err)
	}

	m := &Model{
		VGenes:      vGenes,
		DGenes:      dGenes,
		JGenes:      jGenes,
		PV:          tables["p_v"],
		PInsVD:      tables["p_ins_vd"],
		PInsDJ:      tables["p_ins_dj"],
		PDJ:         rowsToTable(rows, "p_dj"),
		PDelVGivenV: rowsToTable(rows, "p_del_v_given_v"),
		PDelJGivenJ: rowsToTable(rows, "p_del_j_given_j"),
	}
	if v, ok := tables["first_nt_bias_ins_vd"]; ok && len(v) == 4 {
		copy(m.FirstNtBiasInsVD[:], v)
	}
	if v, ok := tables["first_nt_bias_ins_dj"]; ok && len(v) == 4 {
		copy(m.FirstNtBiasInsDJ[:], v)
	}
	if mat := rowsToTable(rows, "markov_coefficients_vd"); len(mat) == 4 {
		for i, row := range mat {
			copy(m.MarkovCoefficientsVD[i][:], row)
		}
	}
	if mat := rowsToTable(rows, "markov_coefficients_dj"); len(mat) == 4 {
		for i, row := range mat {
			copy(m.MarkovCoefficientsDJ[i][:], row)
		}
	}
	if v, ok := tables["error_rate"]; ok && len(v) == 1 {
		m.ErrorRate = v[0]
	}
	m.PDelD3DelD5 = make([][][]float64, len(dGenes))
	for d := range dGenes {
		m.PDelD3DelD5[d] = rowsToTable(rows, fmt.Sprintf("p_del_d3_del_d5[%d]", d))
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return m, nil
}

// rowsToTable collects every "name[i]=..." row recorded under name into a
// dense [][]float64 ordered by i, or nil if no such rows were present.
func rowsToTable(rows map[string]map[int][]float64, name string) [][]float64 {
	byIndex, ok := rows[name]
	if !ok || len(byIndex) == 0 {
		return nil
	}
	maxIdx := -1
	for i := range byIndex {
		if i > maxIdx {
			maxIdx = i
		}
	}
	out := make([][]float64, maxIdx+1)
	for i, row := range byIndex {
		out[i] = row
	}
	return out
}

func readAnchors(path string) ([]Gene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var genes []Gene
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 3 {
			return nil, fmt.Errorf("malformed anchor line: %q", line)
		}
		g := Gene{
			Name:       fields[0],
			Seq:        strings.ToUpper(fields[1]),
			Functional: fields[2],
		}
		if len(fields) > 3 && fields[3] != "" {
			pos, err := strconv.Atoi(fields[3])
			if err != nil {
				return nil, fmt.Errorf("malformed cdr3_pos in line %q: %w", line, err)
			}
			g.CDR3Pos = &pos
		}
		genes = append(genes, g)
	}
	return genes, sc.Err()
}

// readTables parses a flat "name=v1,v2,..." marginals file. A line may
// instead index a row of a 2-D table with "name[i]=v1,v2,...", collected
// separately into rows so 2-D/3-D marginals (p_dj, p_del_v_given_v,
// markov_coefficients_vd, p_del_d3_del_d5[d], ...) can be assembled one row
// at a time without requiring a richer file format.
func readTables(path string) (map[string][]float64, map[string]map[int][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	tables := make(map[string][]float64)
	rows := make(map[string]map[int][]float64)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, nil, fmt.Errorf("malformed table line: %q", line)
		}
		name := strings.TrimSpace(parts[0])
		var vals []float64
		for _, tok := range strings.Split(parts[1], ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("malformed value %q in table %q: %w", tok, name, err)
			}
			vals = append(vals, v)
		}
		if base, idx, ok := parseRowName(name); ok {
			if rows[base] == nil {
				rows[base] = make(map[int][]float64)
			}
			rows[base][idx] = vals
			continue
		}
		tables[name] = vals
	}
	return tables, rows, sc.Err()
}

// parseRowName splits "name[i]" into ("name", i, true), or reports false
// for a plain "name".
func parseRowName(name string) (string, int, bool) {
	open := strings.LastIndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return "", 0, false
	}
	idx, err := strconv.Atoi(name[open+1 : len(name)-1])
	if err != nil {
		return "", 0, false
	}
	return name[:open], idx, true
}

// Aligner is the sequence-alignment collaborator declared in spec §6:
// given a read and a Model, produce a Sequence carrying the candidate V, D,
// J alignments. Alignment algorithms are explicitly out of scope (spec §1);
// this package ships only the interface.
type Aligner interface {
	Align(read string, m *Model) (*Sequence, error)
}
