package main

import "github.com/ajpearen/lineup-etl/cmd"

func main() {
	cmd.Execute()
}
