// Package model holds the data types shared between inference and
// generation: genes, alignments, the recombination model itself, the
// per-read Sequence collaborator contract, and the tagged Likelihood value.
package model

import "fmt"

// Nucleotides lists the four bases in the canonical order used to index
// every categorical and Markov table in this package: A, C, G, T.
var Nucleotides = [4]byte{'A', 'C', 'G', 'T'}

// NucleotideIndex maps a base to its canonical index, or -1 if the base is
// not one of A, C, G, T (e.g. the ambiguous code N).
func NucleotideIndex(b byte) int {
	switch b {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	default:
		return -1
	}
}

// IndexNucleotide is the inverse of NucleotideIndex.
func IndexNucleotide(i int) byte {
	return Nucleotides[i]
}

// ReverseComplement returns the reverse complement of a nucleotide string.
// Unrecognized characters map to the ambiguous base N, matching the
// teacher's own utils.ReverseComplement convention.
func ReverseComplement(seq string) string {
	out := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		var c byte
		switch seq[len(seq)-1-i] {
		case 'A':
			c = 'T'
		case 'T':
			c = 'A'
		case 'C':
			c = 'G'
		case 'G':
			c = 'C'
		default:
			c = 'N'
		}
		out[i] = c
	}
	return string(out)
}

// EncodeNucleotides converts an ACGT string into canonical 0..3 indices.
// It returns an error if any base outside A, C, G, T is found, since the
// Markov and categorical error-weighting machinery downstream assumes a
// fully-resolved read (ambiguous bases are the aligner's concern to flag
// before this point, per spec §6).
func EncodeNucleotides(seq string) ([]byte, error) {
	out := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		idx := NucleotideIndex(seq[i])
		if idx < 0 {
			return nil, fmt.Errorf("encode nucleotides: unsupported base %q at position %d", seq[i], i)
		}
		out[i] = byte(idx)
	}
	return out, nil
}
