package main

import "github.com/SolidLabResearch/user-managed-access-sub001/cmd"

func main() {
	cmd.Execute()
}
