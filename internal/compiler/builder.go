package compiler

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/mattinsler/protos/internal/ir"
)

// Source-location path tags from descriptor.proto.
const (
	tagFileMessage    = 4
	tagFileEnum       = 5
	tagFileService    = 6
	tagMessageField   = 2
	tagMessageNested  = 3
	tagMessageEnum    = 4
	tagMessageOneof   = 8
	tagEnumValue      = 2
	tagServiceMethod  = 2
	mapEntrySuffix    = "Entry"
	mapEntryKeyName   = "key"
	mapEntryValueName = "value"
)

var scalarTypes = map[descriptorpb.FieldDescriptorProto_Type]ir.Scalar{
	descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:   ir.ScalarDouble,
	descriptorpb.FieldDescriptorProto_TYPE_FLOAT:    ir.ScalarFloat,
	descriptorpb.FieldDescriptorProto_TYPE_INT64:    ir.ScalarInt64,
	descriptorpb.FieldDescriptorProto_TYPE_UINT64:   ir.ScalarUint64,
	descriptorpb.FieldDescriptorProto_TYPE_INT32:    ir.ScalarInt32,
	descriptorpb.FieldDescriptorProto_TYPE_FIXED64:  ir.ScalarFixed64,
	descriptorpb.FieldDescriptorProto_TYPE_FIXED32:  ir.ScalarFixed32,
	descriptorpb.FieldDescriptorProto_TYPE_BOOL:     ir.ScalarBool,
	descriptorpb.FieldDescriptorProto_TYPE_STRING:   ir.ScalarString,
	descriptorpb.FieldDescriptorProto_TYPE_BYTES:    ir.ScalarBytes,
	descriptorpb.FieldDescriptorProto_TYPE_UINT32:   ir.ScalarUint32,
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED32: ir.ScalarSfixed32,
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED64: ir.ScalarSfixed64,
	descriptorpb.FieldDescriptorProto_TYPE_SINT32:   ir.ScalarSint32,
	descriptorpb.FieldDescriptorProto_TYPE_SINT64:   ir.ScalarSint64,
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for debug output. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// Builder turns file descriptors into IR. A Builder holds no state between
// calls and may be reused.
type Builder struct {
	logger *slog.Logger
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build compiles every file with a fresh default Builder.
func Build(files ...*descriptorpb.FileDescriptorProto) (*ir.ProtoSpec, error) {
	return New().Build(files)
}

// FileResult is the IR produced by one file, each sequence sorted by
// fullname.
type FileResult struct {
	Filename string
	Package  string
	Enums    []ir.EnumSpec
	Messages []ir.MessageSpec
	Services []ir.ServiceSpec
}

// Build compiles files in order and merges the results. When two files
// declare the same fullname the later file wins.
func (b *Builder) Build(files []*descriptorpb.FileDescriptorProto) (*ir.ProtoSpec, error) {
	enums := make(map[string]ir.EnumSpec)
	messages := make(map[string]ir.MessageSpec)
	services := make(map[string]ir.ServiceSpec)

	for _, f := range files {
		res, err := b.BuildFile(f)
		if err != nil {
			return nil, err
		}
		for _, e := range res.Enums {
			if was, ok := enums[e.Fullname]; ok {
				b.logReplaced("enum", e.Fullname, was.Filename, res.Filename)
			}
			enums[e.Fullname] = e
		}
		for _, m := range res.Messages {
			if was, ok := messages[m.Fullname]; ok {
				b.logReplaced("message", m.Fullname, was.Filename, res.Filename)
			}
			messages[m.Fullname] = m
		}
		for _, s := range res.Services {
			if was, ok := services[s.Fullname]; ok {
				b.logReplaced("service", s.Fullname, was.Filename, res.Filename)
			}
			services[s.Fullname] = s
		}
	}

	spec := &ir.ProtoSpec{
		Enums:    slices.Collect(maps.Values(enums)),
		Messages: slices.Collect(maps.Values(messages)),
		Services: slices.Collect(maps.Values(services)),
	}
	spec.Sort()

	b.logger.Debug("build complete",
		"files", len(files),
		"enums", len(spec.Enums),
		"messages", len(spec.Messages),
		"services", len(spec.Services))
	return spec, nil
}

func (b *Builder) logReplaced(kind, fullname, from, to string) {
	b.logger.Debug("declaration replaced by later file",
		"kind", kind,
		"fullname", fullname,
		"previous", from,
		"file", to)
}

// BuildFile compiles a single file. Map entry messages are resolved against
// this file only.
func (b *Builder) BuildFile(file *descriptorpb.FileDescriptorProto) (*FileResult, error) {
	p := &fileParser{
		file:      file,
		title:     cases.Title(language.Und, cases.NoLower),
		locations: indexLocations(file.GetSourceCodeInfo()),
		messages:  make(map[string]ir.MessageSpec),
	}
	pkg := packagePrefix(file.GetPackage())

	b.logger.Debug("parsing file",
		"file", file.GetName(),
		"package", pkg,
		"locations", len(p.locations))

	for i, e := range file.GetEnumType() {
		p.parseEnum(e, pkg, []int32{tagFileEnum, int32(i)})
	}
	for i, m := range file.GetMessageType() {
		if err := p.parseMessage(m, pkg, []int32{tagFileMessage, int32(i)}); err != nil {
			return nil, err
		}
	}
	for i, s := range file.GetService() {
		p.parseService(s, pkg, []int32{tagFileService, int32(i)})
	}

	res := &FileResult{
		Filename: file.GetName(),
		Package:  pkg,
		Enums:    p.enums,
		Messages: slices.Collect(maps.Values(p.messages)),
		Services: p.services,
	}
	sortFileResult(res)
	return res, nil
}

func sortFileResult(res *FileResult) {
	spec := ir.ProtoSpec{Enums: res.Enums, Messages: res.Messages, Services: res.Services}
	spec.Sort()
	res.Enums, res.Messages, res.Services = spec.Enums, spec.Messages, spec.Services
}

// packagePrefix drops empty segments so "a..b" and ".a.b" both become "a.b".
func packagePrefix(pkg string) string {
	var segs []string
	for _, s := range strings.Split(pkg, ".") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return strings.Join(segs, ".")
}

// typeRef strips the leading dot (and any empty segment) of a resolved
// descriptor type name.
func typeRef(name string) string {
	return packagePrefix(name)
}

type fileParser struct {
	file      *descriptorpb.FileDescriptorProto
	title     cases.Caser
	locations map[string]*descriptorpb.SourceCodeInfo_Location

	enums    []ir.EnumSpec
	messages map[string]ir.MessageSpec
	services []ir.ServiceSpec
}

// indexLocations keys location records by path. Later records overwrite
// earlier ones with the same path.
func indexLocations(info *descriptorpb.SourceCodeInfo) map[string]*descriptorpb.SourceCodeInfo_Location {
	out := make(map[string]*descriptorpb.SourceCodeInfo_Location, len(info.GetLocation()))
	for _, loc := range info.GetLocation() {
		out[pathKey(loc.GetPath())] = loc
	}
	return out
}

func (p *fileParser) comments(path []int32) ir.Comments {
	loc, ok := p.locations[pathKey(path)]
	if !ok {
		return nil
	}
	var out ir.Comments
	if c := loc.GetLeadingComments(); c != "" {
		out = append(out, strings.TrimSpace(c))
	}
	for _, c := range loc.GetLeadingDetachedComments() {
		out = append(out, strings.TrimSpace(c))
	}
	if c := loc.GetTrailingComments(); c != "" {
		out = append(out, strings.TrimSpace(c))
	}
	return out
}

func (p *fileParser) errorf(code string, path []int32, format string, args ...any) *CompileError {
	return &CompileError{
		Code:    code,
		File:    p.file.GetName(),
		Path:    slices.Clone(path),
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *fileParser) parseEnum(e *descriptorpb.EnumDescriptorProto, pkg string, path []int32) {
	spec := ir.EnumSpec{
		Filename: p.file.GetName(),
		Fullname: ir.JoinName(pkg, e.GetName()),
		Name:     e.GetName(),
		Package:  pkg,
		Comments: p.comments(path),
	}
	for i, v := range e.GetValue() {
		spec.Values = append(spec.Values, ir.EnumValue{
			Name:     v.GetName(),
			Value:    v.GetNumber(),
			Comments: p.comments(childPath(path, tagEnumValue, i)),
		})
	}
	p.enums = append(p.enums, spec)
}

func (p *fileParser) parseMessage(m *descriptorpb.DescriptorProto, pkg string, path []int32) error {
	fullname := ir.JoinName(pkg, m.GetName())

	// Nested declarations first so map entries are in p.messages before the
	// fields that reference them.
	for i, e := range m.GetEnumType() {
		p.parseEnum(e, fullname, childPath(path, tagMessageEnum, i))
	}
	for i, nested := range m.GetNestedType() {
		if err := p.parseMessage(nested, fullname, childPath(path, tagMessageNested, i)); err != nil {
			return err
		}
	}

	// Oneofs backing proto3 optional fields are not groups.
	synthetic := make(map[int32]bool)
	for _, f := range m.GetField() {
		if f.GetProto3Optional() && f.OneofIndex != nil {
			synthetic[f.GetOneofIndex()] = true
		}
	}

	decls := m.GetOneofDecl()
	groups := make([]*ir.OneOfField, len(decls))
	for i, o := range decls {
		if synthetic[int32(i)] {
			continue
		}
		groups[i] = &ir.OneOfField{
			Name:     o.GetName(),
			Comments: p.comments(childPath(path, tagMessageOneof, i)),
		}
	}

	var fields []ir.Field
	for i, f := range m.GetField() {
		fpath := childPath(path, tagMessageField, i)
		field, err := p.parseField(f, fpath)
		if err != nil {
			return err
		}
		if f.OneofIndex == nil || f.GetProto3Optional() {
			fields = append(fields, field)
			continue
		}
		idx := f.GetOneofIndex()
		if idx < 0 || int(idx) >= len(groups) || groups[idx] == nil {
			return p.errorf(CodeStructuralViolation, fpath,
				"field %q of %s: oneof index %d out of range (%d declared)", f.GetName(), fullname, idx, len(decls))
		}
		if _, isMap := field.Type.(ir.MapType); isMap {
			return p.errorf(CodeStructuralViolation, fpath,
				"field %q of %s: map field inside oneof %q", f.GetName(), fullname, groups[idx].Name)
		}
		groups[idx].OneOf = append(groups[idx].OneOf, field)
	}
	for _, g := range groups {
		if g != nil {
			fields = append(fields, *g)
		}
	}

	p.messages[fullname] = ir.MessageSpec{
		Filename: p.file.GetName(),
		Fullname: fullname,
		Name:     m.GetName(),
		Package:  pkg,
		Fields:   fields,
		Comments: p.comments(path),
	}
	return nil
}

func (p *fileParser) parseField(f *descriptorpb.FieldDescriptorProto, path []int32) (ir.BasicField, error) {
	typ, err := p.parseType(f, path)
	if err != nil {
		return ir.BasicField{}, err
	}
	_, isMap := typ.(ir.MapType)
	return ir.BasicField{
		Name:     f.GetName(),
		Number:   f.GetNumber(),
		Required: f.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REQUIRED,
		Repeated: !isMap && f.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED,
		Type:     typ,
		Comments: p.comments(path),
	}, nil
}

func (p *fileParser) parseType(f *descriptorpb.FieldDescriptorProto, path []int32) (ir.Type, error) {
	if s, ok := scalarTypes[f.GetType()]; ok {
		return ir.BasicType{Basic: s}, nil
	}
	switch f.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		return ir.EnumType{Enum: typeRef(f.GetTypeName())}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		ref := typeRef(f.GetTypeName())
		if f.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED &&
			strings.HasSuffix("."+ref, "."+p.mapEntryName(f)) {
			return p.resolveMap(f, ref, path)
		}
		return ir.MessageType{Message: ref}, nil
	}
	return nil, p.errorf(CodeStructuralViolation, path,
		"field %q: unrecognized type %v", f.GetName(), f.GetType())
}

// mapEntryName is the synthetic message name protoc generates for a map
// field: the JSON name with its first letter title-cased, plus "Entry".
func (p *fileParser) mapEntryName(f *descriptorpb.FieldDescriptorProto) string {
	name := f.GetJsonName()
	if name == "" {
		name = lowerCamel(f.GetName())
	}
	return p.title.String(name) + mapEntrySuffix
}

// resolveMap lifts key and value types out of the entry message and removes
// the entry from the file's message set. A user message that happens to
// match the naming convention is treated the same way.
func (p *fileParser) resolveMap(f *descriptorpb.FieldDescriptorProto, entryName string, path []int32) (ir.Type, error) {
	entry, ok := p.messages[entryName]
	if !ok {
		return nil, p.errorf(CodeUnresolvedMapEntry, path,
			"field %q: map entry %s not declared in this file", f.GetName(), entryName)
	}
	var key, value ir.Type
	for _, ef := range entry.BasicFields() {
		switch ef.Name {
		case mapEntryKeyName:
			key = ef.Type
		case mapEntryValueName:
			value = ef.Type
		}
	}
	basic, isBasic := key.(ir.BasicType)
	switch {
	case key == nil || value == nil:
		return nil, p.errorf(CodeUnresolvedMapEntry, path,
			"field %q: map entry %s lacks key or value", f.GetName(), entryName)
	case !isBasic:
		return nil, p.errorf(CodeUnresolvedMapEntry, path,
			"field %q: map entry %s key is not a scalar", f.GetName(), entryName)
	}
	delete(p.messages, entryName)
	return ir.MapType{KeyType: basic, ValueType: value}, nil
}

func (p *fileParser) parseService(s *descriptorpb.ServiceDescriptorProto, pkg string, path []int32) {
	spec := ir.ServiceSpec{
		Filename: p.file.GetName(),
		Fullname: ir.JoinName(pkg, s.GetName()),
		Name:     s.GetName(),
		Package:  pkg,
		Comments: p.comments(path),
	}
	for i, m := range s.GetMethod() {
		spec.Methods = append(spec.Methods, ir.MethodSpec{
			Name: m.GetName(),
			Request: ir.MethodEndpoint{
				Message: typeRef(m.GetInputType()),
				Stream:  m.GetClientStreaming(),
			},
			Response: ir.MethodEndpoint{
				Message: typeRef(m.GetOutputType()),
				Stream:  m.GetServerStreaming(),
			},
			Comments: p.comments(childPath(path, tagServiceMethod, i)),
		})
	}
	p.services = append(p.services, spec)
}

func childPath(parent []int32, tag int32, index int) []int32 {
	out := make([]int32, len(parent), len(parent)+2)
	copy(out, parent)
	return append(out, tag, int32(index))
}

// lowerCamel follows protoc's default JSON name: underscores are dropped and
// the following letter upper-cased.
func lowerCamel(name string) string {
	var b strings.Builder
	upper := false
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper && 'a' <= r && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}
