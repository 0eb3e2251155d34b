package main

import "source.quilibrium.com/quilibrium/monorepo/wesolowski/client/cmd"

func main() {
	cmd.Execute()
}
