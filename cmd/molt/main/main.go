package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/molt/cmd/molt"
	"github.com/arthur-debert/molt/pkg/style"
)

func main() {
	rootCmd := molt.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// Print the error in red
		fmt.Fprintln(os.Stderr, style.ErrorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
