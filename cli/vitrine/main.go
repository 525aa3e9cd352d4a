package main

import (
	"os"

	"github.com/joho/godotenv"

	vitrinecmder "github.com/vitrineworks/vitrine/cmd/vitrine"
)

func main() {
	// Credentials may be seeded from a local .env file.
	_ = godotenv.Load()

	cmd := vitrinecmder.NewVitrineCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
