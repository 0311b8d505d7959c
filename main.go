package main

import "projsync/cmd"

func main() {
	cmd.Execute()
}
