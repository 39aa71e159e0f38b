package main

import "inkwell/lineage/cmd"

func main() {
	cmd.Execute()
}
