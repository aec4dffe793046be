package main

import "github.com/sxastarter/lastmod-proxy/internal/cmd"

func main() {
	cmd.Execute()
}
