// Package pkgdef renders a spec for dynamic loaders: a protobufjs-style
// nested namespace JSON, and per-service gRPC package definitions that can
// be resolved against a descriptor registry and registered on a server.
package pkgdef
