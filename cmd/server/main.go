package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "receipt-engine/internal/adapters/web"
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

	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	invoices := store.NewInvoiceStore(pool)
	exporter := export.NewService(invoices)

	var agent ai.AgentService
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set; /api/scan is unavailable")
	}

	svc := app.NewAppService(core.DefaultConfig(), invoices, exporter, agent)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
