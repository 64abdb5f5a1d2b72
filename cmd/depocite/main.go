package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ppiankov/depocite/internal/cli"
)

func main() {
	// DEPOCITE_* settings may live in a local .env
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
