package main

import "codewizard/cmd"

func main() {
	cmd.Execute()
}
