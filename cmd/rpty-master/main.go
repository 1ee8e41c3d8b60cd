// Command rpty-master runs on the host holding the real terminal and
// serves PTY calls for any number of remote slaves (§6's master CLI
// surface).
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/getgreenlight/remote-pty/internal/bridge"
	"github.com/getgreenlight/remote-pty/internal/master"
	"github.com/getgreenlight/remote-pty/internal/proto"
	"github.com/getgreenlight/remote-pty/internal/pty"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version", "--version", "-v":
		fmt.Fprintf(os.Stderr, "rpty-master %s\n", version)
		return
	case "help", "--help", "-h":
		usage()
		return
	}

	transport := os.Args[1]
	if !unix.Isatty(unix.Stdin) {
		fmt.Fprintln(os.Stderr, "rpty-master: stdin is not a terminal")
		os.Exit(1)
	}

	if err := run(transport); err != nil {
		log.Printf("rpty-master: %v", err)
		os.Exit(1)
	}
}

func run(transport string) error {
	pp, err := pty.Open()
	if err != nil {
		return fmt.Errorf("allocate pty: %w", err)
	}
	defer pp.Close()

	if err := pty.SyncWinsize(os.Stdin.Fd(), pp.Master.Fd()); err != nil {
		log.Printf("rpty-master: syncWinsize: %v", err)
	}

	raw, err := pty.SetRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("set raw mode: %w", err)
	}
	defer raw.Restore()

	srv := master.NewServer(pp)

	if url := os.Getenv("RPTY_BRIDGE_URL"); url != "" {
		b := bridge.New(url, os.Getenv("RPTY_BRIDGE_TOKEN"))
		defer b.Close()
		srv.SetObserver(b)
	}

	acc, err := master.Listen(transport)
	if err != nil {
		return fmt.Errorf("listen %s: %w", transport, err)
	}
	defer acc.Close()

	go pumpLocalStdin(srv)
	go pumpLocalSignals(srv)

	return srv.Serve(acc)
}

func pumpLocalStdin(srv *master.Server) {
	buf := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			srv.PushStdin(buf[:n])
		}
		if err != nil {
			srv.Terminate()
			return
		}
	}
}

func pumpLocalSignals(srv *master.Server) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH, syscall.SIGINT, syscall.SIGTERM)
	for sig := range ch {
		switch sig {
		case syscall.SIGWINCH:
			srv.PushSignal(proto.SIGWINCH)
		case syscall.SIGINT:
			srv.PushSignal(proto.SIGINT)
		case syscall.SIGTERM:
			srv.PushSignal(proto.SIGTERM)
			srv.Terminate()
			return
		}
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `rpty-master %s

Usage: rpty-master <network:address>

Examples:
  rpty-master unix:/tmp/rpty.sock
  rpty-master tcp::4040
`, version)
}
