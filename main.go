package main

import "github.com/honganh1206/convodash/cmd"

func main() {
	cmd.Execute()
}
