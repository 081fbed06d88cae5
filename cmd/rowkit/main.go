package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := runRoot(context.Background(), newRootCmd()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
