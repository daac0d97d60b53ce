package main

import "github.com/magick-mcp/magick-mcp/cmd"

func main() {
	cmd.Execute()
}
