package main

import (
	"github.com/KaramelBytes/salesdash/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for SALESDASH_* settings
	_ = godotenv.Load()
	cmd.Execute()
}
