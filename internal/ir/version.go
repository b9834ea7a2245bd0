package ir

// Version constants for the IR schema and the compiler that produces it.
const (
	// IRVersion is the IR schema version.
	IRVersion = "1"

	// CompilerVersion is the protos compiler version.
	CompilerVersion = "0.1.0"
)
