package main

import "javamap/internal/cli"

func main() {
	cli.Execute()
}
