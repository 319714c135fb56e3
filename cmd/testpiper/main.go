package main

import (
	"log"

	"github.com/nandakiran-r/TestPiper/cmd/testpiper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
