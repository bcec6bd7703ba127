package main

import (
	"os"

	"git.home.luguber.info/inful/odata4gen/cmd/odata4gen/commands"
)

func main() {
	os.Exit(commands.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
