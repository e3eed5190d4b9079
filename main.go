package main

import (
	"os"

	"github.com/growwithkishore/autopost/cmd"
	"github.com/growwithkishore/autopost/internal/logutil"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logutil.Errorf("%v", err)
		os.Exit(1)
	}
}
