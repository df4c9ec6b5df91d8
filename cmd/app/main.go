package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"receipt-engine/internal/adapters/cli"
	"receipt-engine/internal/adapters/repl"
	"receipt-engine/internal/ai"
	"receipt-engine/internal/app"
	"receipt-engine/internal/core"
	"receipt-engine/internal/db"
	"receipt-engine/internal/export"
	"receipt-engine/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	// Storage and AI are optional for the text-only workflow: parse and
	// validate work with neither configured.
	var invoices store.InvoiceStoreService
	var exporter *export.Service
	if os.Getenv("DATABASE_URL") != "" {
		pool, err := db.NewPool(ctx)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		defer pool.Close()
		st := store.NewInvoiceStore(pool)
		invoices = st
		exporter = export.NewService(st)
	}

	var agent ai.AgentService
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set; scan is unavailable")
	}

	svc := app.NewAppService(core.DefaultConfig(), invoices, exporter, agent)

	if len(os.Args) > 1 {
		cli.Run(ctx, svc, os.Args[1:])
		return
	}
	repl.Run(ctx, svc, bufio.NewReader(os.Stdin))
}
