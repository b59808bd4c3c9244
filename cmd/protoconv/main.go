// Command protoconv converts protobuf messages between the binary wire format
// and the JSON or msgpack rendering of their generic objects. Message types
// are loaded from .proto sources at run time, so no generated code is needed.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand(nil).Execute(); err != nil {
		os.Exit(1)
	}
}
