// File: cmd/meshbuf/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import "github.com/momentics/meshbuf/cmd/meshbuf/command"

func main() {
	command.Execute()
}
