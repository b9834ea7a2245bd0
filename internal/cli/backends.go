package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattinsler/protos/internal/config"
	"github.com/mattinsler/protos/internal/ir"
	"github.com/mattinsler/protos/internal/render/pkgdef"
	"github.com/mattinsler/protos/internal/render/tsclient"
)

// Backends lists the renderer names accepted by render and protos.yaml.
var Backends = []string{config.BackendTS, config.BackendPkgDef, config.BackendServices, config.BackendJSON}

// renderBackend renders spec with the named backend. JSON backends are
// indented with two spaces.
func renderBackend(name string, spec *ir.ProtoSpec, long tsclient.LongType) ([]byte, error) {
	switch name {
	case config.BackendTS:
		out, err := tsclient.Render(spec, tsclient.WithLongType(long))
		if err != nil {
			return nil, err
		}
		return []byte(out), nil
	case config.BackendPkgDef:
		obj, err := pkgdef.JSON(spec)
		if err != nil {
			return nil, err
		}
		return marshalIndent(obj)
	case config.BackendServices:
		defs, err := pkgdef.Definitions(spec)
		if err != nil {
			return nil, err
		}
		return marshalIndent(defs)
	case config.BackendJSON:
		return marshalIndent(spec)
	default:
		return nil, fmt.Errorf("unknown backend %q: must be one of %v", name, Backends)
	}
}

func marshalIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
