package main

import "github.com/AdronTech/svd-tools/cmd"

func main() {
	cmd.Execute()
}
