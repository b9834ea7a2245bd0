// Command protos compiles protobuf descriptor sets to the protos IR and
// renders it through the code generation backends.
package main

import (
	"os"

	"github.com/mattinsler/protos/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
