// diff is a small CLI to manually run the diff implementations used for benchmarking. It prints
// the differences between two files in the pseudo-unified format of the selected library.
//
// Usage:
//
//	diff [-lib name] <x> <y>
//	diff [-lib name] -txtar <file>
//	diff -list
package main

import (
	"flag"
	"fmt"
	"os"
	"slices"

	"golang.org/x/tools/txtar"
	"znkr.io/dmp/internal/benchmarks"
)

func main() {
	lib := flag.String("lib", "znkr-dmp", "library to use for diffing")
	list := flag.Bool("list", false, "list the available libraries and exit")
	archive := flag.String("txtar", "", "use testdata txtar file instead of two input files")
	flag.Parse()

	if *list {
		for _, impl := range benchmarks.Impls {
			fmt.Println(impl.Name)
		}
		return
	}

	i := slices.IndexFunc(benchmarks.Impls, func(impl benchmarks.Impl) bool { return impl.Name == *lib })
	if i < 0 {
		fmt.Fprintf(os.Stderr, "error: unknown library %q, use -list to see all libraries\n", *lib)
		os.Exit(1)
	}

	x, y, err := inputs(*archive, flag.CommandLine.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(benchmarks.Impls[i].Diff(x, y))
}

// inputs reads the two inputs either from the x and y files of a txtar archive or from two files.
func inputs(archive string, args []string) (x, y []byte, err error) {
	if archive != "" {
		if len(args) != 0 {
			return nil, nil, fmt.Errorf("usage: diff -txtar <file>")
		}
		ar, err := txtar.ParseFile(archive)
		if err != nil {
			return nil, nil, err
		}
		for _, f := range ar.Files {
			switch f.Name {
			case "x":
				x = f.Data
			case "y":
				y = f.Data
			}
		}
		return x, y, nil
	}

	if len(args) != 2 {
		return nil, nil, fmt.Errorf("usage: diff <x> <y>")
	}
	if x, err = os.ReadFile(args[0]); err != nil {
		return nil, nil, err
	}
	if y, err = os.ReadFile(args[1]); err != nil {
		return nil, nil, err
	}
	return x, y, nil
}
