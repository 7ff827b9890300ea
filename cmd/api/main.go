package main

import (
	"fmt"
	"os"

	"github.com/huyndao/robux-exchange/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "robux-exchange: %v\n", err)
		os.Exit(1)
	}
}
