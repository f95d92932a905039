// Package receipt extracts transaction fields from receipt images with a
// Gemini model. Model output is untrusted and always validated.
package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fintrack-backend/internal/models"

	"google.golang.org/genai"
)

var (
	ErrUnreadable    = errors.New("could not read receipt content")
	ErrMissingFields = errors.New("receipt missing required information (amount or date)")
	ErrDisabled      = errors.New("receipt scanning is not configured")
)

// Fields are the values pre-filled into a new transaction form.
type Fields struct {
	Title         string                 `json:"title"`
	Amount        float64                `json:"amount"`
	Date          string                 `json:"date"`
	Description   string                 `json:"description"`
	Category      string                 `json:"category"`
	PaymentMethod models.PaymentMethod   `json:"paymentMethod"`
	Type          models.TransactionType `json:"type"`
	ReceiptURL    string                 `json:"receiptUrl"`
}

type Scanner interface {
	Scan(ctx context.Context, image []byte, mimeType string) (Fields, error)
}

const prompt = "Analyze this receipt image and extract the following information in JSON format:\n" +
	"{\n" +
	"  \"title\": \"merchant or store name\",\n" +
	"  \"amount\": \"total amount as a number\",\n" +
	"  \"date\": \"date in ISO format (YYYY-MM-DD)\",\n" +
	"  \"description\": \"brief description of the transaction\",\n" +
	"  \"category\": \"category (e.g., Food, Shopping, Transport, etc.)\",\n" +
	"  \"paymentMethod\": \"payment method if visible (CASH, CARD, MOBILE_PAYMENT, etc.)\",\n" +
	"  \"type\": \"EXPENSE or INCOME\"\n" +
	"}\n\n" +
	"Rules:\n" +
	"- If information is not clearly visible, omit that field\n" +
	"- Amount must be a positive number\n" +
	"- Date must be in YYYY-MM-DD format\n" +
	"- Type should almost always be EXPENSE for receipts\n" +
	"- Return ONLY valid raw JSON, no code fences and no additional text\n"

type GeminiScanner struct {
	client *genai.Client
	model  string
}

func NewGeminiScanner(ctx context.Context, apiKey, model string) (*GeminiScanner, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiScanner{client: client, model: model}, nil
}

func (s *GeminiScanner) Scan(ctx context.Context, image []byte, mimeType string) (Fields, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return Fields{}, fmt.Errorf("generate content: %w", err)
	}
	return Parse(resp.Text())
}

// raw mirrors what the model sends; amount may come back as a string.
type raw struct {
	Title         string          `json:"title"`
	Amount        json.RawMessage `json:"amount"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"paymentMethod"`
	Type          string          `json:"type"`
}

// Parse validates a model response and applies defaults.
func Parse(text string) (Fields, error) {
	clean := cleanModelJSON(text)
	if clean == "" {
		return Fields{}, ErrUnreadable
	}

	var r raw
	if err := json.Unmarshal([]byte(clean), &r); err != nil {
		return Fields{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	amount, ok := parseAmount(r.Amount)
	if !ok || amount <= 0 {
		return Fields{}, ErrMissingFields
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(r.Date))
	if err != nil {
		return Fields{}, ErrMissingFields
	}

	f := Fields{
		Title:         strings.TrimSpace(r.Title),
		Amount:        amount,
		Date:          date.Format("2006-01-02"),
		Description:   strings.TrimSpace(r.Description),
		Category:      strings.TrimSpace(r.Category),
		PaymentMethod: models.PaymentMethod(strings.ToUpper(strings.TrimSpace(r.PaymentMethod))),
		Type:          models.TransactionType(strings.ToUpper(strings.TrimSpace(r.Type))),
	}
	if f.Title == "" {
		f.Title = "Receipt"
	}
	if f.Category == "" {
		f.Category = "Uncategorized"
	}
	if !f.PaymentMethod.Valid() {
		f.PaymentMethod = models.PaymentCash
	}
	if !f.Type.Valid() {
		f.Type = models.TransactionExpense
	}
	return f, nil
}

func parseAmount(msg json.RawMessage) (float64, bool) {
	if len(msg) == 0 || string(msg) == "null" {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(msg, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return 0, false
	}
	s = strings.TrimLeft(strings.TrimSpace(s), "$€£")
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// cleanModelJSON strips markdown fences and anything around the outer object.
func cleanModelJSON(text string) string {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return ""
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}

// DisabledScanner is used when no API key is configured.
type DisabledScanner struct{}

func (DisabledScanner) Scan(context.Context, []byte, string) (Fields, error) {
	return Fields{}, ErrDisabled
}
