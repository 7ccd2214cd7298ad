package main

import "github.com/notargets/gopolar/cmd"

func main() {
	cmd.Execute()
}
