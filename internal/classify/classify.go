// Package classify resolves raw search strings into identifier kinds.
//
// Classification is a fixed cascade of pattern tests tried in priority
// order; the first match wins and anything unrecognized falls through to a
// plain name lookup. The SMILES recognizer is deliberately conservative: it
// only accepts strings built entirely from known element and bond tokens, so
// it produces false negatives and is never authoritative over a kind the
// user picked explicitly.
package classify

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/stoichtab/stoichtab/internal/sheet"
)

var (
	casRE      = regexp.MustCompile(`^\d{1,7}-\d{1,2}-\d$`)
	inchiRE    = regexp.MustCompile(`^InChI=1S?/[^\s]+(\s|$)`)
	inchiKeyRE = regexp.MustCompile(`^(InChIKey=)?[A-Z]{14}-[A-Z]{10}-[A-Z]$`)
	cidRE      = regexp.MustCompile(`^[0-9]+$`)

	// Full one- and two-letter element alphabet. Alternation order does
	// not matter for whether the whole string matches; "Cl" tokenizes as
	// one element because no path through C plus a bare l exists.
	smilesElements = "(H|He|Li|Be|B|C|N|O|F|Ne|Na|Mg|Al|Si|P|S|Cl|Ar|" +
		"K|Ca|Sc|Ti|V|Cr|Mn|Fe|Co|Ni|Cu|Zn|Ga|Ge|As|Se|Br|Kr|" +
		"Rb|Sr|Y|Zr|Nb|Mo|Tc|Ru|Rh|Pd|Ag|Cd|In|Sn|Sb|Te|I|Xe|" +
		"Cs|Ba|La|Ce|Pr|Nd|Pm|Sm|Eu|Gd|Tb|Dy|Ho|Er|Tm|Yb|Lu|" +
		"Hf|Ta|W|Re|Os|Ir|Pt|Au|Hg|Tl|Pb|Bi|Po|At|Rn|" +
		"Fr|Ra|Ac|Th|Pa|U|Np|Pu|Am|Cm|Bk|Cf|Es|Fm|Md|No|Lr|" +
		"Rf|Db|Sg|Bh|Hs|Mt|Ds|Rg|Cn|Nh|Fl|Mc|Lv|Ts|Og)"
	smilesRest = `[bcnops]|[0-9]|TH|AL|SP|TB|OH|se|as|[+-=#$/:\\@\[\]\(\)%\*]`
	smilesRE   = regexp.MustCompile(`^(` + smilesElements + `|` + smilesRest + `)+$`)
)

// Normalize trims and NFC-normalizes raw search input. Pasted identifiers
// occasionally carry decomposed unicode which the pattern tests would miss.
func Normalize(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// Classify resolves a raw search string into an identifier kind.
// Pure and synchronous; it never fails, unmatched input is a Name.
func Classify(text string) sheet.Kind {
	s := Normalize(text)
	switch {
	case IsCAS(s):
		return sheet.KindCAS
	case IsInChI(s):
		return sheet.KindInChI
	case IsInChIKey(s):
		return sheet.KindInChIKey
	case IsCID(s):
		return sheet.KindCID
	case IsSMILES(s):
		return sheet.KindSMILES
	default:
		return sheet.KindName
	}
}

// IsCAS reports whether the trimmed input is a CAS registry number.
func IsCAS(s string) bool { return casRE.MatchString(strings.TrimSpace(s)) }

// IsInChI reports whether the trimmed input is a full InChI string.
func IsInChI(s string) bool { return inchiRE.MatchString(strings.TrimSpace(s)) }

// IsInChIKey reports whether the trimmed input is an InChIKey, with or
// without the "InChIKey=" prefix.
func IsInChIKey(s string) bool { return inchiKeyRE.MatchString(strings.TrimSpace(s)) }

// IsCID reports whether the trimmed input is an all-digit compound ID.
func IsCID(s string) bool { return cidRE.MatchString(strings.TrimSpace(s)) }

// IsSMILES reports whether the trimmed input parses entirely as SMILES
// tokens. Best effort: a false result does not mean the input is invalid
// SMILES, only that this recognizer will not claim it.
func IsSMILES(s string) bool { return smilesRE.MatchString(strings.TrimSpace(s)) }
