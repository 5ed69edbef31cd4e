package main

import "github.com/theirongolddev/budgetviz/cmd"

func main() {
	cmd.Execute()
}
