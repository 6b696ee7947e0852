package main

import "github.com/tanloong/phony/cmd"

func main() {
	cmd.Execute()
}
