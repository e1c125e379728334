package main

import "github.com/fabfab/portfolio-agent/cmd"

func main() {
	cmd.Execute()
}
