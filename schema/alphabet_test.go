package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlphabetValidate(t *testing.T) {
	cases := []struct {
		name     string
		alphabet *Alphabet
		seq      string
		wantErr  string
	}{
		{name: "plain_dna", alphabet: Nucleotide(), seq: "ACGTacgt"},
		{name: "ambiguity_codes", alphabet: Nucleotide(), seq: "ACGTNRYSWKM"},
		{name: "rna", alphabet: Nucleotide(), seq: "ACGU"},
		{name: "protein_in_dna", alphabet: Nucleotide(), seq: "ACGTE", wantErr: `character 'E' at offset 4 is not a valid nucleotide code`},
		{name: "protein", alphabet: AminoAcid(), seq: "MKVLAT*"},
		{name: "gap_in_protein", alphabet: AminoAcid(), seq: "MKV-LAT"},
		{name: "digit", alphabet: AminoAcid(), seq: "MKV2", wantErr: `character '2' at offset 3 is not a valid amino-acid code`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.alphabet.Validate([]byte(tc.seq))
			if tc.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.EqualError(t, err, tc.wantErr)
			}
		})
	}
}

func TestAlphabetByName(t *testing.T) {
	for _, name := range []string{"nucleotide", "dna", "rna", "protein", "amino-acid"} {
		a, err := AlphabetByName(name)
		require.NoError(t, err)
		require.NotNil(t, a)
	}

	_, err := AlphabetByName("klingon")
	require.Error(t, err)
}
