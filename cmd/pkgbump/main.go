package main

import "pkgbump/internal/cli"

func main() {
	cli.Execute()
}
