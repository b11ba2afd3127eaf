// Command restchat is a terminal client for a REST chat service.
package main

import (
	"fmt"
	"os"

	"restchat/cmd/restchat/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
