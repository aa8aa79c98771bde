package main

import "github.com/aweris/merklesync/cmd/merklesync/cmd"

func main() {
	cmd.Execute()
}
