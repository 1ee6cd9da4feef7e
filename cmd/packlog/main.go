/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/ssargent/packlog/cmd/packlog/cmd"
)

func main() {
	cmd.Execute()
}
