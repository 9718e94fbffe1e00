package main

import (
	"os"

	"github.com/relcut/relcut/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
