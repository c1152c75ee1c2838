package main

import (
	"os"

	"github.com/happyculture/soco-concierge/cmd/concierge"
)

func main() {
	if err := concierge.Execute(); err != nil {
		os.Exit(1)
	}
}
