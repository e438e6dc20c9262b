package main

import "github.com/yigit/schooldir/cmd/schoolctl/commands"

func main() {
	commands.Execute()
}
