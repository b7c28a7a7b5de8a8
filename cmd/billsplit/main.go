package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/billsplit-dev/billsplit/internal/commands"
)

func main() {
	// .env is optional; it may set BILLSPLIT_CONFIG or LOG_LEVEL.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
