package main

import "github.com/theirongolddev/aqsat/cmd"

func main() {
	cmd.Execute()
}
