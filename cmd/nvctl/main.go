// Command nvctl inspects and adjusts NVIDIA display settings through the
// driver's control API.
package main

import (
	"fmt"
	"os"
)

// Version is set during build.
var Version = "0.1.0-dev"

func main() {
	if err := run(newApp(os.Stdout), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one command line and releases the driver whether or not
// the command failed.
func run(a *app, args []string) error {
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.Execute()
	if serr := a.shutdown(); err == nil {
		err = serr
	}
	return err
}
