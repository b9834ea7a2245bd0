package ir

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error with field path and message.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// mapKeyScalars are the scalars protobuf allows as map keys.
var mapKeyScalars = map[Scalar]bool{
	ScalarInt32:    true,
	ScalarInt64:    true,
	ScalarUint32:   true,
	ScalarUint64:   true,
	ScalarSint32:   true,
	ScalarSint64:   true,
	ScalarFixed32:  true,
	ScalarFixed64:  true,
	ScalarSfixed32: true,
	ScalarSfixed64: true,
	ScalarBool:     true,
	ScalarString:   true,
}

// Validate checks the spec against the data model invariants.
// Returns all errors (not fail-fast) for better developer experience.
// Cross-references between entities are not checked.
func (s *ProtoSpec) Validate() []ValidationError {
	var errs []ValidationError

	seen := make(map[string]bool)
	prev := ""
	for i, e := range s.Enums {
		at := fmt.Sprintf("enums[%d]", i)
		errs = append(errs, checkEntity(at, e.Fullname, e.Name, e.Package, prev, seen)...)
		prev = e.Fullname
		if len(e.Values) == 0 {
			errs = append(errs, ValidationError{Field: at + ".values", Message: "enum has no values"})
		}
		names := make(map[string]bool)
		for j, v := range e.Values {
			if names[v.Name] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.values[%d]", at, j),
					Message: fmt.Sprintf("duplicate enum value name %q", v.Name),
				})
			}
			names[v.Name] = true
		}
	}

	seen = make(map[string]bool)
	prev = ""
	for i, m := range s.Messages {
		at := fmt.Sprintf("messages[%d]", i)
		errs = append(errs, checkEntity(at, m.Fullname, m.Name, m.Package, prev, seen)...)
		prev = m.Fullname
		errs = append(errs, checkFields(at, m.Fields)...)
	}

	seen = make(map[string]bool)
	prev = ""
	for i, sv := range s.Services {
		at := fmt.Sprintf("services[%d]", i)
		errs = append(errs, checkEntity(at, sv.Fullname, sv.Name, sv.Package, prev, seen)...)
		prev = sv.Fullname
		names := make(map[string]bool)
		for j, m := range sv.Methods {
			mat := fmt.Sprintf("%s.methods[%d]", at, j)
			if names[m.Name] {
				errs = append(errs, ValidationError{Field: mat, Message: fmt.Sprintf("duplicate method name %q", m.Name)})
			}
			names[m.Name] = true
			if m.Request.Message == "" {
				errs = append(errs, ValidationError{Field: mat + ".request", Message: "missing request message"})
			}
			if m.Response.Message == "" {
				errs = append(errs, ValidationError{Field: mat + ".response", Message: "missing response message"})
			}
		}
	}

	return errs
}

func checkEntity(at, fullname, name, pkg, prev string, seen map[string]bool) []ValidationError {
	var errs []ValidationError
	if name == "" || strings.Contains(name, ".") {
		errs = append(errs, ValidationError{Field: at + ".name", Message: fmt.Sprintf("invalid name %q", name)})
	}
	// Nested declarations carry their parent's fullname as package.
	if fullname != JoinName(pkg, shortName(fullname)) {
		errs = append(errs, ValidationError{
			Field:   at + ".package",
			Message: fmt.Sprintf("package %q does not prefix fullname %q", pkg, fullname),
		})
	}
	if shortName(fullname) != name {
		errs = append(errs, ValidationError{
			Field:   at + ".fullname",
			Message: fmt.Sprintf("fullname %q does not end with name %q", fullname, name),
		})
	}
	if seen[fullname] {
		errs = append(errs, ValidationError{Field: at + ".fullname", Message: fmt.Sprintf("duplicate fullname %q", fullname)})
	} else if prev != "" && fullname < prev {
		errs = append(errs, ValidationError{Field: at + ".fullname", Message: fmt.Sprintf("%q sorts before %q", fullname, prev)})
	}
	seen[fullname] = true
	return errs
}

func checkFields(at string, fields []Field) []ValidationError {
	var errs []ValidationError
	names := make(map[string]bool)
	numbers := make(map[int32]string)

	checkBasic := func(fat string, f BasicField) {
		if names[f.Name] {
			errs = append(errs, ValidationError{Field: fat, Message: fmt.Sprintf("duplicate field name %q", f.Name)})
		}
		names[f.Name] = true
		if f.Number <= 0 {
			errs = append(errs, ValidationError{Field: fat + ".number", Message: fmt.Sprintf("field number %d must be positive", f.Number)})
		} else if other, dup := numbers[f.Number]; dup {
			errs = append(errs, ValidationError{
				Field:   fat + ".number",
				Message: fmt.Sprintf("field number %d already used by %q", f.Number, other),
			})
		} else {
			numbers[f.Number] = f.Name
		}
		errs = append(errs, checkType(fat+".type", f.Type)...)
		if _, isMap := f.Type.(MapType); isMap && f.Repeated {
			errs = append(errs, ValidationError{Field: fat + ".repeated", Message: "map fields are never repeated"})
		}
	}

	for i, f := range fields {
		fat := fmt.Sprintf("%s.fields[%d]", at, i)
		switch f := f.(type) {
		case BasicField:
			checkBasic(fat, f)
		case OneOfField:
			if names[f.Name] {
				errs = append(errs, ValidationError{Field: fat, Message: fmt.Sprintf("duplicate field name %q", f.Name)})
			}
			names[f.Name] = true
			if len(f.OneOf) == 0 {
				errs = append(errs, ValidationError{Field: fat + ".oneof", Message: "oneof group has no members"})
			}
			for j, member := range f.OneOf {
				checkBasic(fmt.Sprintf("%s.oneof[%d]", fat, j), member)
			}
		default:
			errs = append(errs, ValidationError{Field: fat, Message: fmt.Sprintf("unsupported field variant %T", f)})
		}
	}
	return errs
}

func checkType(at string, t Type) []ValidationError {
	switch t := t.(type) {
	case nil:
		return []ValidationError{{Field: at, Message: "type is required"}}
	case BasicType:
		if !ValidScalars[t.Basic] {
			return []ValidationError{{Field: at, Message: fmt.Sprintf("unknown scalar %q", t.Basic)}}
		}
	case EnumType:
		if t.Enum == "" {
			return []ValidationError{{Field: at, Message: "enum reference is empty"}}
		}
	case MessageType:
		if t.Message == "" {
			return []ValidationError{{Field: at, Message: "message reference is empty"}}
		}
	case MapType:
		var errs []ValidationError
		if !mapKeyScalars[t.KeyType.Basic] {
			errs = append(errs, ValidationError{Field: at + ".keyType", Message: fmt.Sprintf("scalar %q cannot be a map key", t.KeyType.Basic)})
		}
		if _, nested := t.ValueType.(MapType); nested {
			errs = append(errs, ValidationError{Field: at + ".valueType", Message: "map value cannot be a map"})
		}
		return append(errs, checkType(at+".valueType", t.ValueType)...)
	default:
		return []ValidationError{{Field: at, Message: fmt.Sprintf("unsupported type variant %T", t)}}
	}
	return nil
}

func shortName(fullname string) string {
	return fullname[strings.LastIndex(fullname, ".")+1:]
}
