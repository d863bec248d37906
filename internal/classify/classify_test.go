package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stoichtab/stoichtab/internal/sheet"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  sheet.Kind
	}{
		{"cas", "64-17-5", sheet.KindCAS},
		{"cas long prefix", "7732-18-5", sheet.KindCAS},
		{"cas with spaces", "  64-17-5  ", sheet.KindCAS},
		{"standard inchi", "InChI=1S/H2O/h1H2", sheet.KindInChI},
		{"non-standard inchi", "InChI=1/CH4/h1H4", sheet.KindInChI},
		{"inchikey", "XLYOFNOQVPJJNP-UHFFFAOYSA-N", sheet.KindInChIKey},
		{"inchikey with prefix", "InChIKey=XLYOFNOQVPJJNP-UHFFFAOYSA-N", sheet.KindInChIKey},
		{"cid", "962", sheet.KindCID},
		{"smiles ring with charge", "C1C[CH+]1", sheet.KindSMILES},
		{"smiles stereo", "N[C@@H](C)C(=O)O", sheet.KindSMILES},
		{"smiles cis/trans", `F/C=C\F`, sheet.KindSMILES},
		{"smiles two-letter element", "CCl4", sheet.KindSMILES},
		{"smiles aromatic", "c1ccccc1", sheet.KindSMILES},
		{"plain name", "foobar", sheet.KindName},
		{"name with space", "table salt", sheet.KindName},
		{"empty", "", sheet.KindName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.input))
		})
	}
}

func TestCASRejectsMalformed(t *testing.T) {
	assert.False(t, IsCAS("64-17-55"), "check digit must be a single digit")
	assert.False(t, IsCAS("64-175-5"), "middle group is at most two digits")
	assert.False(t, IsCAS("12345678-17-5"), "leading group is at most seven digits")
	assert.False(t, IsCAS("64-17"), "two groups are not a CAS number")
}

func TestInChIKeyRejectsWrongShape(t *testing.T) {
	assert.False(t, IsInChIKey("XLYOFNOQVPJJNP-UHFFFAOYSA"))
	assert.False(t, IsInChIKey("xlyofnoqvpjjnp-uhfffaoysa-n"))
}

func TestCIDBeatsSMILESForDigits(t *testing.T) {
	// All-digit input is a compound ID even though digits are also valid
	// SMILES ring-bond tokens.
	assert.True(t, IsSMILES("962"))
	assert.Equal(t, sheet.KindCID, Classify("962"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "water", Normalize("  water\t"))
	// NFC composes a decomposed e + combining acute.
	assert.Equal(t, "cafféine", Normalize("cafféine"))
}
