package main

import (
	"log"

	"github.com/computerscienceiscool/file-explorer/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
