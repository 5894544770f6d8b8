package main

import "github.com/kirksw/ghorg/cmd"

func main() {
	cmd.Execute()
}
