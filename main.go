package main

import "github.com/darmiel/verdict/cmd"

func main() {
	cmd.Execute()
}
