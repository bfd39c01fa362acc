package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"veil/cmd"
)

func main() {
	// .env is optional; config also comes from the environment and
	// .veil.yaml.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
