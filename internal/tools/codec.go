package tools

import "strings"

// FieldKind selects how a positional field's raw text is decoded.
type FieldKind int

const (
	// KindString keeps the part byte-for-byte as supplied.
	KindString FieldKind = iota
	// KindBool decodes "true" (case-insensitive, surrounding
	// whitespace ignored) to true and anything else to false.
	KindBool
	// KindList splits the part on commas.
	KindList
)

// Field declares one positional argument: its name, decode rule, and
// the default used when the raw input omits the trailing field.
type Field struct {
	Name    string
	Kind    FieldKind
	Default string
}

// Args holds decoded positional fields, addressed by field name.
type Args struct {
	values map[string]string
	kinds  map[string]FieldKind
}

// Decode splits raw on the '|' delimiter and maps the parts to spec
// fields positionally. Parts are kept exactly as supplied, whitespace
// included, so splitting a decoded value set back together reproduces
// the raw input. Fields beyond the supplied parts take their declared
// defaults. An empty raw string therefore yields an empty first field
// with every later field defaulted; callers treat an empty required
// field as a tool-level input error.
//
// Neither '|' nor ',' can be escaped: a value containing them corrupts
// the following fields. That is the accepted limitation of the wire
// format, not something this codec tries to repair.
func Decode(raw string, spec []Field) *Args {
	parts := strings.Split(raw, "|")

	a := &Args{
		values: make(map[string]string, len(spec)),
		kinds:  make(map[string]FieldKind, len(spec)),
	}
	for i, f := range spec {
		value := f.Default
		if i < len(parts) {
			value = parts[i]
		}
		a.values[f.Name] = value
		a.kinds[f.Name] = f.Kind
	}
	return a
}

// String returns the decoded string field.
func (a *Args) String(name string) string {
	return a.values[name]
}

// Bool returns the decoded boolean field.
func (a *Args) Bool(name string) bool {
	return strings.EqualFold(strings.TrimSpace(a.values[name]), "true")
}

// List returns the decoded list field. Elements come back exactly as
// written between the commas; an empty field yields nil.
func (a *Args) List(name string) []string {
	raw := a.values[name]
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
