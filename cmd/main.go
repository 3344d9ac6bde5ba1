package main

import (
	"log"

	"github.com/contentsafety/gosdk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}
