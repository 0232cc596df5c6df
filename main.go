package main

import (
	"os"

	"github.com/guildpoint/guildpoint/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
