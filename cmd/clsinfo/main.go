// Package main is the entry point for the clsinfo CLI tool.
package main

import (
	"github.com/hargabyte/clsinfo/internal/cmd"
)

func main() {
	cmd.Execute()
}
