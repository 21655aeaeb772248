package main

import "github.com/MakeenTechnology/tiny-idb-helper/cmd"

func main() {
	cmd.Execute()
}
