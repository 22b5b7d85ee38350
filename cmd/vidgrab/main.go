package main

import "vidgrab/internal/cli"

func main() {
	cli.Execute()
}
