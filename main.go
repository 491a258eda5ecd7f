// main is the entry point for the anamericanday CLI.
package main

import (
	"fmt"
	"os"

	"github.com/benmcmorran/anamericanday/cmd"
	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/benmcmorran/anamericanday/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	code := 0
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "❌", err)
		code = 1
	}
	if err := cmd.StopProfiling(); err != nil {
		contract.LogWarn("Failed to stop profiling", err)
	}
	iocache.CloseStores()
	os.Exit(code)
}
