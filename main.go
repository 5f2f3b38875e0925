package main

import "github.com/KaramelBytes/bikedash/cmd"

func main() {
	cmd.Execute()
}
