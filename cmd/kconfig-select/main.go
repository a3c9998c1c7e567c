package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/kbuild-tools/kconfig-select/internal/cli"
)

func main() {
	// Interrupt follows the shell convention: 128 + SIGINT
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		os.Exit(130)
	}()

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
