package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/atinyakov/ShopKeeper/internal/app"
	"github.com/atinyakov/ShopKeeper/internal/client"
	"github.com/atinyakov/ShopKeeper/internal/config"
	"github.com/atinyakov/ShopKeeper/internal/logger"
)

var (
	version   string
	buildDate string
)

// main opens the configured storage and runs the interactive shell on it.
func main() {
	for _, a := range os.Args[1:] {
		if a == "-version" || a == "--version" {
			fmt.Printf("ShopKeeper Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
			return
		}
	}

	options, err := config.Parse()
	if err != nil {
		log.Fatal(err)
	}

	zl := logger.New()
	if err := zl.Init(options.LogLevel); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	storage, closeStorage, err := app.Open(ctx, options, zl.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := closeStorage(); err != nil {
			log.Println("close storage:", err)
		}
	}()

	if err := client.NewShell(storage, os.Stdin, os.Stdout, zl.Log).Run(ctx); err != nil {
		log.Println(err)
	}
}
