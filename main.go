package main

import "github.com/edgestore/storefront/cmd"

func main() {
	cmd.Start()
}
