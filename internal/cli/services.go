package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/protobuf/reflect/protoregistry"

	"github.com/mattinsler/protos/internal/compiler"
	"github.com/mattinsler/protos/internal/render/pkgdef"
)

// loadServices compiles the descriptor sets and returns their service
// definitions with the registry they resolve against.
func loadServices(sources []string, logger *slog.Logger) (pkgdef.PackageDefinition, *protoregistry.Files, error) {
	if len(sources) == 0 {
		return nil, nil, &compiler.LoadError{Code: compiler.ErrCodeNoFiles, Message: "no descriptor sets given"}
	}
	files, err := compiler.LoadDescriptorSets(sources...)
	if err != nil {
		return nil, nil, err
	}
	spec, err := compiler.New(compiler.WithLogger(logger)).Build(files)
	if err != nil {
		return nil, nil, err
	}
	defs, err := pkgdef.Definitions(spec)
	if err != nil {
		return nil, nil, withCode(ErrCodeRender, err)
	}
	reg, err := compiler.Registry(files)
	if err != nil {
		return nil, nil, err
	}
	return defs, reg, nil
}

// findMethod looks up "pkg.Service/Method", "/pkg.Service/Method" or
// "pkg.Service.Method".
func findMethod(defs pkgdef.PackageDefinition, name string) (*pkgdef.ServiceDefinition, *pkgdef.MethodDefinition, error) {
	name = strings.TrimPrefix(name, "/")
	i := strings.LastIndex(name, "/")
	if i < 0 {
		i = strings.LastIndex(name, ".")
	}
	if i <= 0 || i == len(name)-1 {
		return nil, nil, withCode(ErrCodeUsage, fmt.Errorf("invalid method %q: want <service>/<method>", name))
	}
	svcName, methodName := name[:i], name[i+1:]
	svc, ok := defs[svcName]
	if !ok {
		return nil, nil, withCode(ErrCodeUsage, fmt.Errorf("unknown service %q", svcName))
	}
	m := svc.Method(methodName)
	if m == nil {
		return nil, nil, withCode(ErrCodeUsage, fmt.Errorf("service %s has no method %q", svcName, methodName))
	}
	return svc, m, nil
}
