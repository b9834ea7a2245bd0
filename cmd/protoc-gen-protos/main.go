// Command protoc-gen-protos is a protoc plugin writing the protos IR of the
// request's files.
//
//	protoc --protos_out=. --protos_opt=out=api.json,ts=api.ts api.proto
//
// Options: out (IR path, default protos.json), ts (TypeScript declarations)
// and pkgdef (protobufjs nested namespace JSON).
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/mattinsler/protos/internal/compiler"
	"github.com/mattinsler/protos/internal/render/pkgdef"
	"github.com/mattinsler/protos/internal/render/tsclient"
)

const defaultOut = "protos.json"

func main() {
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		os.Stderr.WriteString("failed to read input: " + err.Error() + "\n")
		os.Exit(1)
	}

	req := &pluginpb.CodeGeneratorRequest{}
	if err := proto.Unmarshal(input, req); err != nil {
		os.Stderr.WriteString("failed to unmarshal request: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	resp := generate(req, logger)

	output, err := proto.Marshal(resp)
	if err != nil {
		os.Stderr.WriteString("failed to marshal response: " + err.Error() + "\n")
		os.Exit(1)
	}

	os.Stdout.Write(output)
}

type options struct {
	out    string
	ts     string
	pkgdef string
}

func parseOptions(param string) (options, error) {
	opts := options{out: defaultOut}
	if param == "" {
		return opts, nil
	}
	for _, kv := range strings.Split(param, ",") {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			return opts, fmt.Errorf("invalid option %q: want key=value", kv)
		}
		switch key {
		case "out":
			opts.out = value
		case "ts":
			opts.ts = value
		case "pkgdef":
			opts.pkgdef = value
		default:
			return opts, fmt.Errorf("unknown option %q", key)
		}
	}
	return opts, nil
}

// generate never fails: build errors are reported through resp.Error so
// protoc can print them.
func generate(req *pluginpb.CodeGeneratorRequest, logger *slog.Logger) *pluginpb.CodeGeneratorResponse {
	resp := &pluginpb.CodeGeneratorResponse{
		SupportedFeatures: proto.Uint64(uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL)),
	}
	fail := func(err error) *pluginpb.CodeGeneratorResponse {
		resp.Error = proto.String(err.Error())
		resp.File = nil
		return resp
	}

	opts, err := parseOptions(req.GetParameter())
	if err != nil {
		return fail(err)
	}

	spec, err := compiler.New(compiler.WithLogger(logger)).Build(compiler.FromPluginRequest(req))
	if err != nil {
		return fail(err)
	}
	if err := compiler.CheckSpec(spec); err != nil {
		return fail(err)
	}

	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fail(err)
	}
	addFile(resp, opts.out, string(data)+"\n")

	if opts.ts != "" {
		src, err := tsclient.Render(spec)
		if err != nil {
			return fail(err)
		}
		addFile(resp, opts.ts, src)
	}
	if opts.pkgdef != "" {
		obj, err := pkgdef.JSON(spec)
		if err != nil {
			return fail(err)
		}
		data, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return fail(err)
		}
		addFile(resp, opts.pkgdef, string(data)+"\n")
	}
	return resp
}

func addFile(resp *pluginpb.CodeGeneratorResponse, name, content string) {
	resp.File = append(resp.File, &pluginpb.CodeGeneratorResponse_File{
		Name:    proto.String(name),
		Content: proto.String(content),
	})
}
