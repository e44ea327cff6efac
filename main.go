package main

import "github.com/fbz-tec/docvault/cmd"

func main() {
	cmd.Execute()
}
