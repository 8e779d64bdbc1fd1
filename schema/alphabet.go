package schema

import (
	"fmt"

	"github.com/pkg/errors"
)

// Alphabet is the set of characters a sequence column may contain.
// Validation is case-insensitive.
type Alphabet struct {
	name  string
	valid [256]bool
}

// Nucleotide covers the IUPAC nucleotide codes, including ambiguity codes
// and U for RNA.
func Nucleotide() *Alphabet {
	return newAlphabet("nucleotide", "ACGTURYSWKMBDHVN")
}

// AminoAcid covers the twenty amino acids plus the ambiguity codes B, J, Z
// and X, the stop marker * and the gap character -.
func AminoAcid() *Alphabet {
	return newAlphabet("amino-acid", "ACDEFGHIKLMNPQRSTVWYBJZX*-")
}

// AlphabetByName resolves the names accepted on the command line.
func AlphabetByName(name string) (*Alphabet, error) {
	switch name {
	case "nucleotide", "dna", "rna":
		return Nucleotide(), nil
	case "protein", "amino-acid":
		return AminoAcid(), nil
	default:
		return nil, errors.Errorf("unknown alphabet %q", name)
	}
}

func newAlphabet(name, chars string) *Alphabet {
	a := &Alphabet{name: name}
	for i := 0; i < len(chars); i++ {
		c := chars[i]
		a.valid[c] = true
		if c >= 'A' && c <= 'Z' {
			a.valid[c+('a'-'A')] = true
		}
	}
	return a
}

func (a *Alphabet) Name() string { return a.name }

// Validate returns an error naming the first character of seq outside the
// alphabet, with its 0-based offset.
func (a *Alphabet) Validate(seq []byte) error {
	for i, c := range seq {
		if !a.valid[c] {
			return fmt.Errorf("character %q at offset %d is not a valid %s code", c, i, a.name)
		}
	}
	return nil
}
