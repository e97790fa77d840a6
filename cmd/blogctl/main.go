package main

import (
	"os"

	"github.com/mazurov/bloglist-server/internal/client/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
