package compiler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"
)

// Load error codes (E001-E099), shared with the CLI.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeReadFailed   = "E002" // File read error
	ErrCodeNoFiles      = "E003" // Descriptor set holds no files
	ErrCodeDecodeFailed = "E004" // Descriptor set could not be decoded
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeRegistry     = "E006" // Descriptors do not form a valid registry
	ErrCodeWriteFailed  = "E007" // File write error
)

// LoadError represents an error that occurred while loading descriptors.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Format is the encoding of a descriptor set file.
type Format int

const (
	// FormatBinary is protobuf wire format, as written by
	// protoc --descriptor_set_out.
	FormatBinary Format = iota
	// FormatJSON is the protojson encoding of a FileDescriptorSet.
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "binary"
}

// FormatForPath picks the format from the file extension: .json is
// FormatJSON, anything else FormatBinary.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatBinary
}

// DecodeDescriptorSet decodes a FileDescriptorSet. It performs no I/O.
func DecodeDescriptorSet(data []byte, format Format) ([]*descriptorpb.FileDescriptorProto, error) {
	var set descriptorpb.FileDescriptorSet
	var err error
	switch format {
	case FormatJSON:
		err = protojson.Unmarshal(data, &set)
	default:
		err = proto.Unmarshal(data, &set)
	}
	if err != nil {
		return nil, &LoadError{
			Code:    ErrCodeDecodeFailed,
			Message: fmt.Sprintf("decode %s descriptor set: %v", format, err),
		}
	}
	if len(set.GetFile()) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: "descriptor set contains no files"}
	}
	return set.GetFile(), nil
}

// LoadDescriptorSet reads and decodes a descriptor set file. Build it with
// protoc --include_source_info so comments survive.
func LoadDescriptorSet(path string) ([]*descriptorpb.FileDescriptorProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := ErrCodeReadFailed
		if errors.Is(err, fs.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return nil, &LoadError{Code: code, Path: path, Message: err.Error()}
	}
	files, err := DecodeDescriptorSet(data, FormatForPath(path))
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return files, nil
}

// LoadDescriptorSets loads several sets and concatenates their files in
// argument order, so later paths win on fullname collisions in Build.
func LoadDescriptorSets(paths ...string) ([]*descriptorpb.FileDescriptorProto, error) {
	var all []*descriptorpb.FileDescriptorProto
	for _, p := range paths {
		files, err := LoadDescriptorSet(p)
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}
	return all, nil
}

// FromPluginRequest returns every file of a protoc plugin request,
// dependencies included, in the topological order protoc emits them.
func FromPluginRequest(req *pluginpb.CodeGeneratorRequest) []*descriptorpb.FileDescriptorProto {
	return req.GetProtoFile()
}

// Registry links files into a protoregistry.Files. Every dependency must be
// present in files.
func Registry(files []*descriptorpb.FileDescriptorProto) (*protoregistry.Files, error) {
	reg, err := protodesc.NewFiles(&descriptorpb.FileDescriptorSet{File: files})
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRegistry, Message: err.Error()}
	}
	return reg, nil
}
