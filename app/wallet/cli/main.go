package main

import "github.com/abhi0166/custom-Crypto-Coin/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
