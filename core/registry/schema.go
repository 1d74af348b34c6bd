package registry

import "strings"

// Kind tags how a parameter is parsed from the command line and whether the
// construction engine resolves it.
type Kind int

const (
	// KindStructured values are parsed as YAML literals.
	KindStructured Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	// KindRef parameters hold a fragment of another family.
	KindRef
	// KindRefList parameters hold a sequence of fragments of one family.
	KindRefList
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindRef:
		return "ref"
	case KindRefList:
		return "reflist"
	default:
		return "structured"
	}
}

// Primitive reports whether values of k are coerced with strconv.
func (k Kind) Primitive() bool {
	return k == KindInt || k == KindFloat || k == KindBool || k == KindString
}

// Param declares one keyword argument of a constructor.
type Param struct {
	Name string
	Kind Kind
	// Family is set for KindRef and KindRefList.
	Family string
}

func (p Param) String() string {
	if p.Kind == KindRef || p.Kind == KindRefList {
		return p.Name + ":" + p.Kind.String() + "(" + p.Family + ")"
	}
	return p.Name + ":" + p.Kind.String()
}

// Schema is the ordered parameter list of a constructor.
type Schema []Param

// Lookup returns the parameter called name.
func (s Schema) Lookup(name string) (Param, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

func Int(name string) Param        { return Param{Name: name, Kind: KindInt} }
func Float(name string) Param      { return Param{Name: name, Kind: KindFloat} }
func Bool(name string) Param       { return Param{Name: name, Kind: KindBool} }
func String(name string) Param     { return Param{Name: name, Kind: KindString} }
func Structured(name string) Param { return Param{Name: name, Kind: KindStructured} }

// Ref declares a parameter holding a fragment of family f.
func Ref(name string, f Registrable) Param {
	return Param{Name: name, Kind: KindRef, Family: f.TypeName()}
}

// RefList declares a parameter holding a list of fragments of family f.
func RefList(name string, f Registrable) Param {
	return Param{Name: name, Kind: KindRefList, Family: f.TypeName()}
}
