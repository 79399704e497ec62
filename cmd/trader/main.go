package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/aman-zulfiqar/solana-trend-trader/internal/config"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/models"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/swapengine"
	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

func main() {
	loadEnv()

	mode := flag.String("mode", "buy", "buy | sell | swap | watch")
	userID := flag.String("user", "", "wallet user id")
	limit := flag.Int("limit", 5, "trending tokens to buy (buy mode)")
	amt := flag.Float64("amt", 0, "amount in human units (buy/swap mode)")
	inMint := flag.String("in", "", "input mint (swap mode)")
	outMint := flag.String("out", "", "output mint (swap mode)")
	slippageBps := flag.Int("slippage-bps", 100, "slippage in bps (e.g. 100 = 1%)")
	flag.Parse()

	if *mode != "watch" && *userID == "" {
		fmt.Println("missing -user")
		os.Exit(2)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Println("invalid configuration:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	engine, err := swapengine.NewEngine(ctx, cfg, logger)
	if err != nil {
		fmt.Println("failed to init trading engine:", err)
		os.Exit(1)
	}
	defer engine.Close()

	switch *mode {
	case "buy":
		if *amt <= 0 {
			fmt.Println("missing -amt (must be > 0)")
			os.Exit(2)
		}
		res, err := engine.Orchestrator.BuyTrending(ctx, *userID, *limit, *amt)
		if err != nil {
			fmt.Println("buy batch failed:", err)
			os.Exit(1)
		}
		printBatch(res)
	case "sell":
		res, err := engine.Orchestrator.SellHeld(ctx, *userID)
		if err != nil {
			fmt.Println("sell batch failed:", err)
			os.Exit(1)
		}
		printBatch(res)
	case "swap":
		if *amt <= 0 {
			fmt.Println("missing -amt (must be > 0)")
			os.Exit(2)
		}
		in, err := solana.PublicKeyFromBase58(*inMint)
		if err != nil {
			fmt.Println("invalid -in mint:", err)
			os.Exit(2)
		}
		out, err := solana.PublicKeyFromBase58(*outMint)
		if err != nil {
			fmt.Println("invalid -out mint:", err)
			os.Exit(2)
		}
		outcome, _ := engine.Executor.ExecuteSwap(ctx, swapengine.SwapRequest{
			UserID:      *userID,
			InputMint:   in,
			OutputMint:  out,
			Amount:      *amt,
			SlippageBps: uint16(*slippageBps),
		})
		if outcome.Succeeded() {
			fmt.Printf("state=%s bundle=%s sig=%s cu=%d duration=%s\n",
				outcome.State, outcome.BundleID, outcome.Signature, outcome.ComputeUnits, outcome.Duration)
		} else {
			fmt.Printf("state=%s stage=%s err=%v\n", outcome.State, outcome.FailStage, outcome.Err)
			os.Exit(1)
		}
	case "watch":
		// Stream attempt outcomes published by other processes until
		// interrupted.
		err := engine.Cache.SubscribeAttempts(ctx, func(a *models.SwapAttempt) {
			fmt.Printf("%s user=%s %s->%s state=%s sig=%s\n",
				a.Timestamp.Format("15:04:05"), a.UserID, a.InputMint, a.OutputMint, a.State, a.Signature)
		})
		if err != nil && ctx.Err() == nil {
			fmt.Println("watch failed:", err)
			os.Exit(1)
		}
	default:
		fmt.Println("unknown -mode (want buy | sell | swap | watch)")
		os.Exit(2)
	}
}

func printBatch(res *swapengine.BatchResult) {
	for _, item := range res.Items {
		if item.Outcome.Succeeded() {
			fmt.Printf("[%d] %s state=%s sig=%s\n",
				item.Item.Index, item.Item.Mint, item.Outcome.State, item.Outcome.Signature)
		} else {
			fmt.Printf("[%d] %s state=FAILED stage=%s err=%v\n",
				item.Item.Index, item.Item.Mint, item.Outcome.FailStage, item.Err)
		}
	}
	fmt.Printf("submitted=%d failed=%d\n", res.Submitted, res.Failed)
}
