package main

import "github.com/icco/seqgrid/cmd"

func main() {
	cmd.Execute()
}
