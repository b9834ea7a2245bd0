package compiler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mattinsler/protos/internal/ir"
)

// LoadSpec reads an IR JSON file. The spec is returned as stored, so
// CheckSpec still reports unsorted sequences.
func LoadSpec(path string) (*ir.ProtoSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := ErrCodeReadFailed
		if errors.Is(err, fs.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return nil, &LoadError{Code: code, Path: path, Message: err.Error()}
	}
	spec, err := DecodeSpec(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return spec, nil
}

// DecodeSpec decodes IR JSON. It performs no I/O.
func DecodeSpec(data []byte) (*ir.ProtoSpec, error) {
	var spec ir.ProtoSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("decode IR: %v", err)}
	}
	return &spec, nil
}

// CheckSpec runs ir.ProtoSpec.Validate and folds every failure into one
// CompileError with CodeInvalidSpec. It returns nil for a valid spec.
func CheckSpec(spec *ir.ProtoSpec) error {
	errs := spec.Validate()
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return &CompileError{Code: CodeInvalidSpec, Message: strings.Join(msgs, "; ")}
}

// IsInvalidSpec reports whether err is an invalid spec error.
func IsInvalidSpec(err error) bool {
	return hasCode(err, CodeInvalidSpec)
}
