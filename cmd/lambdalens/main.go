package main

import "github.com/mvp-joe/lambdalens/internal/cli"

func main() {
	cli.Execute()
}
