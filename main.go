package main

import (
	"log"
	"os"

	"gridfetch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Printf("Failed to execute command %s", err.Error())
		os.Exit(1)
	}
}
