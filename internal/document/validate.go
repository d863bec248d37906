package document

import (
	_ "embed"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// validateSchema checks a decoded document against the embedded CUE schema.
// Returns every violation, not just the first; row errors carry the CUE path
// ("rows.2.prop.mw") so the caller can point at the offending cell.
func validateSchema(data any) ParseErrors {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE).LookupPath(cue.ParsePath("#Document"))
	if err := schema.Err(); err != nil {
		return ParseErrors{{Code: ErrSchema, Message: "schema compile failed: " + err.Error()}}
	}

	unified := schema.Unify(ctx.Encode(data))
	err := unified.Validate(cue.Concrete(false))
	if err == nil {
		return nil
	}

	var errs ParseErrors
	for _, e := range cueerrors.Errors(err) {
		errs = append(errs, ParseError{
			Code:    ErrSchema,
			Field:   strings.Join(e.Path(), "."),
			Message: e.Error(),
		})
	}
	return errs
}
