// Package main is the entry point for the lasernest CLI.
package main

import (
	"os"

	"github.com/piwi3910/LaserNest/cmd/lasernest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
