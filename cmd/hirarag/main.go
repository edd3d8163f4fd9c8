package main

import "hirarag/internal/cli"

func main() {
	cli.Execute()
}
