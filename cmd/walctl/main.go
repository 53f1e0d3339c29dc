// Command walctl drives a crashwal directory from the shell: create one,
// inspect it, append or read bytes, and trigger a checkpoint. It is an
// outer CLI consuming the internal/wal byte-stream contract; it is not part
// of the durability core, which has no CLI of its own.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rift-db/crashwal/internal/wal"
	"github.com/rift-db/crashwal/pkg/config"
	"github.com/rift-db/crashwal/pkg/recordstream"
)

func main() {
	var (
		dir        = flag.String("dir", "", "WAL directory")
		configPath = flag.String("config", "", "path to a YAML config file")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-config=<path>] [-dir=<path>] <command> [args]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "commands: init, stat, write <bytes...>, read <n>, checkpoint")
	}
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("walctl: %v", err)
		}
		cfg = loaded
	}
	if *dir == "" {
		*dir = cfg.Dir
	}
	if *dir == "" {
		log.Fatalf("walctl: -dir is required")
	}
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cmd := args[0]
	rest := args[1:]

	if cmd == "init" {
		if err := os.MkdirAll(*dir, 0o755); err != nil {
			log.Fatalf("walctl: create %s: %v", *dir, err)
		}
		w, err := wal.New(*dir)
		if err != nil {
			log.Fatalf("walctl: init: %v", err)
		}
		defer w.Close()
		log.Printf("walctl: initialized WAL at %s", *dir)
		return
	}

	w, err := wal.Open(*dir)
	if err != nil {
		log.Fatalf("walctl: open %s: %v", *dir, err)
	}
	defer w.Close()

	if cfg.RecordIndexPreload {
		store, err := recordstream.Open(w)
		if err != nil {
			log.Fatalf("walctl: preload index: %v", err)
		}
		if _, err := w.Seek(0, io.SeekStart); err != nil {
			log.Fatalf("walctl: preload index: %v", err)
		}
		log.Printf("walctl: preloaded record index, %d keys", store.Len())
	}

	switch cmd {
	case "stat":
		n, err := w.Len()
		if err != nil {
			log.Fatalf("walctl: stat: %v", err)
		}
		log.Printf("walctl: %s: %d bytes, cursor at %d", *dir, n, w.Position())

	case "write":
		payload := make([]byte, len(rest))
		for i, arg := range rest {
			var b int
			if _, err := fmt.Sscanf(arg, "%d", &b); err != nil {
				log.Fatalf("walctl: write: %q is not a byte value: %v", arg, err)
			}
			payload[i] = byte(b)
		}
		if _, err := w.Seek(0, io.SeekEnd); err != nil {
			log.Fatalf("walctl: write: %v", err)
		}
		if _, err := w.Write(payload); err != nil {
			log.Fatalf("walctl: write: %v", err)
		}
		log.Printf("walctl: wrote %d bytes", len(payload))

	case "read":
		if len(rest) != 1 {
			log.Fatalf("walctl: read requires exactly one argument: <n>")
		}
		var n int
		if _, err := fmt.Sscanf(rest[0], "%d", &n); err != nil {
			log.Fatalf("walctl: read: %v", err)
		}
		if _, err := w.Seek(0, io.SeekStart); err != nil {
			log.Fatalf("walctl: read: %v", err)
		}
		buf := make([]byte, n)
		if _, err := w.Read(buf); err != nil {
			log.Fatalf("walctl: read: %v", err)
		}
		fmt.Printf("%v\n", buf)

	case "checkpoint":
		if err := w.Checkpoint(); err != nil {
			log.Fatalf("walctl: checkpoint: %v", err)
		}
		log.Printf("walctl: checkpoint complete")

	default:
		flag.Usage()
		os.Exit(2)
	}
}
