package main

import (
	"fmt"
	"os"

	"github.com/wslkit/wslkit/pkg/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if remediation, ok := errors.GetErrorDetails(err)["remediation"]; ok {
			fmt.Fprintf(os.Stderr, "Hint: %v\n", remediation)
		}
		os.Exit(errors.ExitCode(err))
	}
}
