package main

import "treecover-tools/cmd"

func main() {
	cmd.Execute()
}
