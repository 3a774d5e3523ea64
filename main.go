package main

import (
	"os"

	"github.com/strandchat/strand/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
