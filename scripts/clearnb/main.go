package main

import (
	"flag"
	"fmt"
	"os"

	"rowkit/internal/logging"
	"rowkit/internal/notebook"
)

func main() {
	root := flag.String("root", "..", "root directory")
	dry := flag.Bool("n", false, "list notebooks without rewriting them")
	flag.Parse()
	logging.InitFromEnv()

	if *dry {
		files, err := notebook.Find(*root)
		if err != nil {
			fmt.Fprintln(os.Stderr, "walk:", err)
			os.Exit(1)
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return
	}

	n, err := notebook.CleanAll(*root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.L().Info("notebooks cleaned", "root", *root, "count", n)
}
