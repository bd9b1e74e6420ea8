package main

import "github.com/suvanzhou/futu-algo/internal/cli"

func main() {
	cli.Execute()
}
