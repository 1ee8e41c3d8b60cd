// Command rpty-slave execs a command under the LD_PRELOAD shim and relays
// its terminal-facing libc calls, stdio, and signals to a remote
// rpty-master over a network transport (§6's slave CLI surface).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/getgreenlight/remote-pty/internal/slave"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version", "--version", "-v":
		fmt.Fprintf(os.Stderr, "rpty-slave %s\n", version)
		return
	case "help", "--help", "-h":
		usage()
		return
	case "run":
		runCmd(os.Args[2:])
		return
	}

	fmt.Fprintf(os.Stderr, "rpty-slave: unknown command %q\n\n", os.Args[1])
	usage()
	os.Exit(1)
}

func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	transport := fs.String("master", "", "master transport, e.g. unix:/tmp/rpty.sock or tcp:host:4040")
	preload := fs.String("preload", defaultPreloadPath(), "path to the built librptypreload shared library")
	fs.Parse(args)

	rest := fs.Args()
	if *transport == "" || len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "rpty-slave: -master and a command are required")
		fs.Usage()
		os.Exit(1)
	}

	r, err := slave.NewRunner(*transport, *preload, rest[0], rest[1:])
	if err != nil {
		log.Fatalf("rpty-slave: %v", err)
	}

	if err := r.Start(); err != nil {
		log.Fatalf("rpty-slave: %v", err)
	}

	if err := r.Wait(); err != nil {
		if exitErr, ok := asExitError(err); ok {
			os.Exit(exitErr)
		}
		log.Fatalf("rpty-slave: %v", err)
	}
}

// defaultPreloadPath resolves the preload shared library from the
// RPTY_PRELOAD_LIB env var, falling back to the bare file name
// librptypreload.so.
func defaultPreloadPath() string {
	if p := os.Getenv("RPTY_PRELOAD_LIB"); p != "" {
		return p
	}
	return "librptypreload.so"
}

func usage() {
	fmt.Fprintf(os.Stderr, `rpty-slave %s

Usage: rpty-slave run -master <network:address> [-preload <path>] <command> [args...]

Examples:
  rpty-slave run -master unix:/tmp/rpty.sock -- bash
  rpty-slave run -master tcp:host:4040 -preload ./librptypreload.so -- vim
`, version)
}
