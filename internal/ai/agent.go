package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

type AgentService interface {
	TranscribeImage(ctx context.Context, mimeType string, image []byte) (string, error)
	ExtractFields(ctx context.Context, rawText string) (*ReceiptFields, error)
}

// ReceiptFields is the structured-output shape the model fills in from raw
// receipt text. It is a recovery path for receipts the deterministic parser
// could not fully read, so every field is best-effort.
type ReceiptFields struct {
	Company       string         `json:"company" jsonschema_description:"Merchant name as printed on the receipt"`
	Date          string         `json:"date" jsonschema_description:"Transaction date in YYYY-MM-DD format"`
	Products      []ProductField `json:"products" jsonschema_description:"Purchased products"`
	Subtotal      float64        `json:"subtotal" jsonschema_description:"Pre-tax subtotal"`
	TPS           float64        `json:"tps" jsonschema_description:"Federal tax (TPS/GST) amount"`
	TVQ           float64        `json:"tvq" jsonschema_description:"Provincial tax (TVQ/QST) amount"`
	Total         float64        `json:"total" jsonschema_description:"Grand total including taxes"`
	PaymentMethod string         `json:"payment_method" jsonschema_description:"Payment method, e.g. INTERAC, VISA, COMPTANT"`
}

type ProductField struct {
	Name     string  `json:"name" jsonschema_description:"Product description"`
	Price    float64 `json:"price" jsonschema_description:"Unit price with at most 2 decimals"`
	Quantity int     `json:"quantity" jsonschema_description:"Whole-number quantity, at least 1"`
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

const transcribePrompt = `Transcribe every line of text visible on this receipt image.
Rules:
1. Output plain text only, one receipt line per output line.
2. Preserve the original order, spelling and accents.
3. Do not summarize, translate, or add commentary.`

// TranscribeImage runs the vision model over a receipt photo and returns the
// raw line-oriented text, ready for the parser.
func (a *Agent) TranscribeImage(ctx context.Context, mimeType string, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image")
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModelGPT4o,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(transcribePrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai vision error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty transcription")
	}
	return resp.Choices[0].Message.Content, nil
}

// ExtractFields asks the model to read structured fields out of raw receipt
// text. The response is constrained by a JSON schema generated from
// ReceiptFields, so it always unmarshals cleanly.
func (a *Agent) ExtractFields(ctx context.Context, rawText string) (*ReceiptFields, error) {
	prompt := fmt.Sprintf(`You are an expert at reading retail receipts.
Extract the structured fields from the receipt text below.
Rules:
1. Amounts are plain numbers, no currency symbols.
2. The date must be in YYYY-MM-DD format.
3. Report TPS (federal) and TVQ (provincial) taxes separately.
4. Quantities are whole numbers.
5. Leave a field empty or zero when the receipt does not show it.

Receipt text:
%s`, rawText)

	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "receipt_fields",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("Structured fields extracted from a retail receipt"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var fields ReceiptFields
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	return &fields, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v ReceiptFields
	return reflector.Reflect(v)
}
