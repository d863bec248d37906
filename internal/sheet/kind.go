package sheet

// Kind is the identifier category a search string is interpreted as.
// The bracketed pseudo-kinds select behavior rather than an identifier:
// [auto] classifies the input, [locked] disables lookup for the row.
type Kind string

const (
	KindAuto     Kind = "[auto]"
	KindLocked   Kind = "[locked]"
	KindCAS      Kind = "CAS"
	KindName     Kind = "Name"
	KindCID      Kind = "CID"
	KindSMILES   Kind = "SMILES"
	KindInChIKey Kind = "InChIKey"
	KindInChI    Kind = "InChI"
)

// Kinds lists all selectable kinds in dropdown order.
var Kinds = []Kind{
	KindAuto,
	KindLocked,
	KindCAS,
	KindName,
	KindCID,
	KindSMILES,
	KindInChIKey,
	KindInChI,
}

// ValidKind reports whether k is one of the selectable kinds.
func ValidKind(k Kind) bool {
	for _, x := range Kinds {
		if x == k {
			return true
		}
	}
	return false
}

// Concrete reports whether k names an actual identifier category, as opposed
// to the [auto]/[locked] pseudo-kinds.
func (k Kind) Concrete() bool {
	return ValidKind(k) && k != KindAuto && k != KindLocked
}
