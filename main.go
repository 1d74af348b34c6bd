package main

import (
	"fmt"
	"os"

	"github.com/kilianp07/hive/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hive:", err)
		os.Exit(1)
	}
}
