package main

import "github.com/Bidon15/walletring/cmd/walletctl/cmd"

func main() {
	cmd.Execute()
}
