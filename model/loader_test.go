package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnchorLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	vPath := writeTemp(t, dir, "v.csv", "V1,ACGT,F\n")
	jPath := writeTemp(t, dir, "j.csv", "J1,TTTT,F\n")
	dPath := writeTemp(t, dir, "d.csv", "D1,GGCC,F\n")
	marginals := "" +
		"p_v=1\n" +
		"p_ins_vd=1\n" +
		"p_ins_dj=1\n" +
		"first_nt_bias_ins_vd=0.25,0.25,0.25,0.25\n" +
		"first_nt_bias_ins_dj=0.25,0.25,0.25,0.25\n" +
		"error_rate=0\n" +
		"p_dj[0]=1\n" +
		"p_del_v_given_v[0]=1\n" +
		"p_del_j_given_j[0]=1\n" +
		"p_del_d3_del_d5[0][0]=1\n" +
		"markov_coefficients_vd[0]=0.25,0.25,0.25,0.25\n" +
		"markov_coefficients_vd[1]=0.25,0.25,0.25,0.25\n" +
		"markov_coefficients_vd[2]=0.25,0.25,0.25,0.25\n" +
		"markov_coefficients_vd[3]=0.25,0.25,0.25,0.25\n" +
		"markov_coefficients_dj[0]=0.25,0.25,0.25,0.25\n" +
		"markov_coefficients_dj[1]=0.25,0.25,0.25,0.25\n" +
		"markov_coefficients_dj[2]=0.25,0.25,0.25,0.25\n" +
		"markov_coefficients_dj[3]=0.25,0.25,0.25,0.25\n"
	mPath := writeTemp(t, dir, "marginals.txt", marginals)

	var loader AnchorLoader
	m, err := loader.Load(dPath, mPath, vPath, jPath)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, m.PV)
	assert.Equal(t, [][]float64{{1}}, m.PDJ)
	assert.Equal(t, [][]float64{{1}}, m.PDelVGivenV)
	assert.Equal(t, [][]float64{{1}}, m.PDelD3DelD5[0])
	assert.InDelta(t, 0.25, m.MarkovCoefficientsVD[0][0], 1e-12)
	require.NoError(t, m.Validate())
}

func TestAnchorLoaderRejectsMalformedAnchorLine(t *testing.T) {
	dir := t.TempDir()
	vPath := writeTemp(t, dir, "v.csv", "bad-line-no-commas\n")
	jPath := writeTemp(t, dir, "j.csv", "J1,TTTT,F\n")
	dPath := writeTemp(t, dir, "d.csv", "D1,GGCC,F\n")
	mPath := writeTemp(t, dir, "marginals.txt", "p_v=1\n")

	var loader AnchorLoader
	_, err := loader.Load(dPath, mPath, vPath, jPath)
	assert.Error(t, err)
}
