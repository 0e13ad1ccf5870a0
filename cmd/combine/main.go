package main

import (
	"os"

	"github.com/jakoblorz/go-combine/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
