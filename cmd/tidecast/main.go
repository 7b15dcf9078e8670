package main

import "github.com/ngmaloney/tidecast/internal/cli"

func main() {
	cli.Execute()
}
