package main

import (
	"os"
	"runtime/debug"
)

func main() {
	debug.SetGCPercent(300)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
