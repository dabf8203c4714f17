// ledgersim-cli is a command-line client for interacting with a ledgersimd
// node's REST surface.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ledgersim/ledgersim/internal/exchange"
	"github.com/ledgersim/ledgersim/internal/rpcclient"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	rpcURL := "http://127.0.0.1:8545"

	// Scan for --rpc before the subcommand.
	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	client := rpcclient.New(rpcURL)
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "block":
		cmdBlock(client, cmdArgs)
	case "mine":
		cmdMine(client, cmdArgs)
	case "balance":
		cmdBalance(client, cmdArgs)
	case "market":
		cmdMarket(client, cmdArgs)
	case "order":
		cmdOrder(client, cmdArgs)
	case "deposit":
		cmdDeposit(client, cmdArgs)
	case "balances":
		cmdBalances(client, cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: ledgersim-cli [global flags] <command> [args]

Global flags:
  --rpc <url>    Node RPC endpoint (default: http://127.0.0.1:8545)

Commands:
  block <height>                        Show the block committed at height
  mine <miner_address>                  Mine one block
  balance <address>                     Show an on-chain UTXO balance

  market <pair>                         Register a trading pair
  order <user> <pair> <bid|ask> <amount> [price]
                                         Place an order (market if price omitted)
  deposit <user> <asset> <amount>       Credit a user's exchange balance
  balances <user>                       Show a user's exchange balances
`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func cmdBlock(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: ledgersim-cli block <height>")
	}
	height, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fatal("height must be a non-negative integer: %v", err)
	}
	blk, err := client.GetBlockByHeight(height)
	if err != nil {
		fatal("get block: %v", err)
	}
	fmt.Printf("Hash:       %s\n", blk.Hash)
	fmt.Printf("Height:     %d\n", blk.Header.Height)
	fmt.Printf("Prev hash:  %s\n", blk.Header.PreviousHash)
	fmt.Printf("Merkle:     %s\n", blk.Header.MerkleRoot)
	fmt.Printf("Timestamp:  %d\n", blk.Header.Timestamp)
	fmt.Printf("Difficulty: %d\n", blk.Header.DifficultyTarget)
	fmt.Printf("Nonce:      %d\n", blk.Header.Nonce)
	fmt.Printf("Txs:        %d\n", len(blk.Transactions))
}

func cmdMine(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: ledgersim-cli mine <miner_address>")
	}
	blk, minedIDs, err := client.Mine(args[0])
	if err != nil {
		fatal("mine: %v", err)
	}
	fmt.Printf("Mined block %d (hash %s), drained %d mempool tx(s)\n",
		blk.Header.Height, blk.Hash, len(minedIDs))
}

func cmdBalance(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: ledgersim-cli balance <address>")
	}
	amount, err := client.GetBalance(args[0])
	if err != nil {
		fatal("get balance: %v", err)
	}
	fmt.Printf("Address: %s\n", args[0])
	fmt.Printf("Balance: %s\n", amount)
}

func cmdMarket(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: ledgersim-cli market <pair>")
	}
	if err := client.RegisterMarket(args[0]); err != nil {
		fatal("register market: %v", err)
	}
	fmt.Printf("Market %s registered\n", args[0])
}

func cmdOrder(client *rpcclient.Client, args []string) {
	if len(args) < 4 {
		fatal("Usage: ledgersim-cli order <user> <pair> <bid|ask> <amount> [price]")
	}
	user, pair, side, amount := args[0], args[1], args[2], args[3]

	if len(args) >= 5 {
		price := args[4]
		trades, err := client.PlaceLimitOrder(user, pair, side, price, amount)
		if err != nil {
			fatal("place limit order: %v", err)
		}
		printTrades(trades)
		return
	}

	trades, err := client.PlaceMarketOrder(user, pair, side, amount)
	if err != nil {
		fatal("place market order: %v", err)
	}
	printTrades(trades)
}

func printTrades(trades []exchange.Trade) {
	if len(trades) == 0 {
		fmt.Println("No trades executed (order resting on the book)")
		return
	}
	for _, t := range trades {
		fmt.Printf("traded %s @ %s (buyer=%s seller=%s)\n", t.Amount, t.Price, t.BuyerID, t.SellerID)
	}
}

func cmdDeposit(client *rpcclient.Client, args []string) {
	if len(args) < 3 {
		fatal("Usage: ledgersim-cli deposit <user> <asset> <amount>")
	}
	if err := client.Deposit(args[0], args[1], args[2]); err != nil {
		fatal("deposit: %v", err)
	}
	fmt.Printf("Deposited %s %s to %s\n", args[2], args[1], args[0])
}

func cmdBalances(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: ledgersim-cli balances <user>")
	}
	balances, err := client.GetBalances(args[0])
	if err != nil {
		fatal("get balances: %v", err)
	}
	fmt.Printf("Balances for %s:\n", args[0])
	for asset, amount := range balances {
		fmt.Printf("  %-6s %s\n", asset, amount)
	}
}
