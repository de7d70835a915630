package main

import "github.com/minhvo/spsweep/internal/cli"

func main() {
	cli.Execute()
}
