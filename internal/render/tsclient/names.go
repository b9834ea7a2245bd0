package tsclient

import "strings"

// TypeScript reserved keywords and type names that need to be escaped
var reservedKeywords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true, "function": true,
	"if": true, "import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true, "with": true,
	"as": true, "implements": true, "interface": true, "let": true, "package": true, "private": true,
	"protected": true, "public": true, "static": true, "yield": true, "any": true, "boolean": true,
	"constructor": true, "declare": true, "get": true, "module": true, "require": true, "number": true,
	"set": true, "string": true, "symbol": true, "type": true, "from": true, "of": true,
}

var reservedTypeNames = map[string]bool{
	"object": true, "Uint8Array": true, "array": true, "Array": true, "string": true, "String": true,
	"number": true, "Number": true, "boolean": true, "Boolean": true, "bigint": true, "BigInt": true,
	"Promise": true, "AsyncIterable": true,
}

// Method names that clash with members of generated client classes.
var reservedMethodNames = map[string]bool{
	"name": true, "constructor": true, "close": true, "toString": true,
	"makeUnaryRequest": true, "makeClientStreamRequest": true,
	"makeServerStreamRequest": true, "makeBidiStreamRequest": true,
	"getChannel": true, "waitForReady": true,
	"methods": true, "typeName": true, "options": true,
}

// escapeIdent adds a '$' suffix to reserved keywords and type names.
func escapeIdent(name string) string {
	if reservedKeywords[name] || reservedTypeNames[name] {
		return name + "$"
	}
	return name
}

// escapeMethod adds a '$' suffix to reserved client member names.
func escapeMethod(name string) string {
	if reservedMethodNames[name] {
		return name + "$"
	}
	return name
}

// qualify escapes every segment of a dotted fullname.
func qualify(fullname string) string {
	segs := strings.Split(fullname, ".")
	for i, s := range segs {
		segs[i] = escapeIdent(s)
	}
	return strings.Join(segs, ".")
}

// indent re-indents rendered lines by brace depth.
func indent(src, unit string) string {
	var b strings.Builder
	depth := 0
	for _, line := range strings.Split(src, "\n") {
		if line == "" {
			continue
		}
		comment := strings.HasPrefix(line, "/**") || strings.HasPrefix(line, " *")
		if !comment && strings.HasPrefix(line, "}") && depth > 0 {
			depth--
		}
		b.WriteString(strings.Repeat(unit, depth))
		b.WriteString(line)
		b.WriteByte('\n')
		if !comment && strings.HasSuffix(line, "{") {
			depth++
		}
	}
	return b.String()
}

// docComment renders comments as a JSDoc block, one line per comment line.
func docComment(comments []string) []string {
	if len(comments) == 0 {
		return nil
	}
	out := []string{"/**"}
	for i, c := range comments {
		if i > 0 {
			out = append(out, " *")
		}
		for _, line := range strings.Split(c, "\n") {
			line = strings.TrimRight(line, " \t")
			if line == "" {
				out = append(out, " *")
				continue
			}
			out = append(out, " * "+strings.ReplaceAll(line, "*/", "*\\/"))
		}
	}
	return append(out, " */")
}
