package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreatePalindromicEnds(t *testing.T) {
	g := Gene{Seq: "ACGTACGT"}
	g.CreatePalindromicEnds(2, 3)
	require := assert.New(t)
	require.NotNil(g.SeqWithPal)
	require.Equal(len(g.Seq)+2+3, len(*g.SeqWithPal))
	// left flank is the reverse complement of "AC" -> "GT"
	require.Equal("GT", (*g.SeqWithPal)[:2])
	// right flank is the reverse complement of the last 3 bases "CGT" -> "ACG"
	require.Equal("ACG", (*g.SeqWithPal)[len(*g.SeqWithPal)-3:])
}

func TestReverseComplement(t *testing.T) {
	assert.Equal(t, "ACGT", ReverseComplement("ACGT"))
	assert.Equal(t, "TTTT", ReverseComplement("AAAA"))
	assert.Equal(t, "N", ReverseComplement("X"))
}
