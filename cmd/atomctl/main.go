/*
atomctl is a small command-line driver for a filesystem-backed AtomDB
root cell: open a store, do one operation, print the result, exit.
*/
package main

import "flag"
import "fmt"
import "log"
import "strconv"

import "github.com/conjurernix/atomdb"
import "github.com/conjurernix/atomdb/convert"

var dbDirectory = flag.String("db_directory", "/tmp/atomdb_cli", "root cell's filesystem store directory")
var binaryCodec = flag.Bool("binary", false, "use the binary (CBOR) codec instead of the textual one")

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		log.Fatalf("usage: atomctl [-db_directory dir] [-binary] <deref|reset|incr|cas> [args...]")
	}

	codec := atomdb.Textual
	if *binaryCodec {
		codec = atomdb.Binary
	}

	c, err := atomdb.Open(atomdb.Config{
		Store: atomdb.StoreConfig{Filesystem: &atomdb.FilesystemStoreConfig{Path: *dbDirectory}},
		Codec: codec,
	})
	if err != nil {
		log.Fatalf("atomctl: open: %s", err)
	}

	switch args[0] {
	case "deref":
		runDeref(c)
	case "reset":
		runReset(c, args[1:])
	case "incr":
		runIncr(c, args[1:])
	case "cas":
		runCAS(c, args[1:])
	default:
		log.Fatalf("atomctl: unknown command %q", args[0])
	}
}

func runDeref(c *atomdb.Cell) {
	v, err := c.Deref()
	if err != nil {
		log.Fatalf("atomctl: deref: %s", err)
	}
	plain, err := convert.ToPlain(v)
	if err != nil {
		log.Fatalf("atomctl: deref: %s", err)
	}
	fmt.Printf("%v\n", plain)
}

// runReset installs args[0], parsed as an int64, else a float64, else a
// bool, and as a plain string otherwise, as the cell's new root value.
func runReset(c *atomdb.Cell, args []string) {
	if len(args) != 1 {
		log.Fatalf("usage: atomctl reset <value>")
	}
	v, err := c.Reset(parseScalar(args[0]))
	if err != nil {
		log.Fatalf("atomctl: reset: %s", err)
	}
	h, _ := c.RootHash()
	fmt.Printf("root now %v (hash %s)\n", v, h)
}

// runIncr treats the current root as an int64 counter (defaulting to 0
// if unset) and atomically increments it by delta, retrying under the
// cell's CAS loop if another writer races it.
func runIncr(c *atomdb.Cell, args []string) {
	delta := int64(1)
	if len(args) == 1 {
		n, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			log.Fatalf("atomctl: incr: bad delta %q: %s", args[0], err)
		}
		delta = n
	}

	next, err := c.Swap(func(cur any) (any, error) {
		if cur == nil {
			return delta, nil
		}
		n, ok := cur.(int64)
		if !ok {
			return nil, fmt.Errorf("atomctl: incr: root is not an int64 (got %T)", cur)
		}
		return n + delta, nil
	})
	if err != nil {
		log.Fatalf("atomctl: incr: %s", err)
	}
	fmt.Printf("%v\n", next)
}

// runCAS compares the root against args[0] and, if equal, replaces it
// with args[1].
func runCAS(c *atomdb.Cell, args []string) {
	if len(args) != 2 {
		log.Fatalf("usage: atomctl cas <old> <new>")
	}
	ok, err := c.CompareAndSet(parseScalar(args[0]), parseScalar(args[1]))
	if err != nil {
		log.Fatalf("atomctl: cas: %s", err)
	}
	fmt.Printf("applied=%t\n", ok)
}

func parseScalar(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
