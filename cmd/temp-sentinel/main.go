package main

import "github.com/oshokin/temp-sentinel/cmd/temp-sentinel/cmd"

func main() {
	cmd.Execute()
}
