package main

import "github.com/swiftbuild/swiftwrap/cmd"

func main() {
	cmd.Execute()
}
