// Package main is the entry point for the traffic inspection engine.
package main

import (
	"fmt"
	"os"

	"github.com/John-sanpe/suricata/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
