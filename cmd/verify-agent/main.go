// Command verify-agent runs the field-extraction model against a sample
// receipt and prints the structured result. Useful as a smoke check that
// the OpenAI credentials and schema wiring are working.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"receipt-engine/internal/ai"

	"github.com/joho/godotenv"
)

const sampleReceipt = `L'IMAGINAIRE
ST-BRUNO
1 Boulevard des Promenades
Saint-Bruno-de-Montarville, J3V 5J5
DISNEY LORCANA
2 @ 7.99$
SOUS-TOTAL
15.98$
TPS
0.80$
TVQ
1.59$
TOTAL
18.37$`

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY is not set")
	}

	text := sampleReceipt
	if len(os.Args) > 1 && os.Args[1] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("reading stdin: %v", err)
		}
		text = string(data)
	}

	agent := ai.NewAgent(apiKey)
	fields, err := agent.ExtractFields(context.Background(), text)
	if err != nil {
		log.Fatalf("extraction failed: %v", err)
	}

	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		log.Fatalf("encoding result: %v", err)
	}
	fmt.Println(string(out))
}
