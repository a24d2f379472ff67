package main

import "github.com/ndoctl-project/ndoctl/cmd"

func main() {
	cmd.Execute()
}
