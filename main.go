package main

import "mspro-labs/brew-notes/cmd"

func main() {
	cmd.Execute()
}
