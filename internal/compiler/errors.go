package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Build error codes (E100-E199)
const (
	CodeStructuralViolation = "E101" // unrecognized field type or oneof index out of range
	CodeUnresolvedMapEntry  = "E102" // synthetic map entry message missing or malformed
	CodeInvalidSpec         = "E103" // built or decoded IR fails ir.ProtoSpec.Validate
)

// CompileError reports a descriptor that cannot be turned into IR.
// Path is the source-location path of the offending declaration.
type CompileError struct {
	Code    string
	File    string
	Path    []int32
	Message string
}

func (e *CompileError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", e.Code)
	if e.File != "" {
		b.WriteString(e.File)
		if len(e.Path) > 0 {
			b.WriteByte('@')
			b.WriteString(pathKey(e.Path))
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// IsStructuralViolation reports whether err is a structural violation.
func IsStructuralViolation(err error) bool {
	return hasCode(err, CodeStructuralViolation)
}

// IsUnresolvedMapEntry reports whether err is an unresolved map entry.
func IsUnresolvedMapEntry(err error) bool {
	return hasCode(err, CodeUnresolvedMapEntry)
}

func hasCode(err error, code string) bool {
	var ce *CompileError
	return errors.As(err, &ce) && ce.Code == code
}

// pathKey renders a location path as "4,0,2,1".
func pathKey(path []int32) string {
	var b strings.Builder
	for i, p := range path {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(p)))
	}
	return b.String()
}
