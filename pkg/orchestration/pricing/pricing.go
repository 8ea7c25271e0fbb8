// Package pricing holds the per-model token price registry and the cost formula.
package pricing

import (
	"sort"
	"strings"

	"teamcollab-be/pkg/orchestration"

	"github.com/shopspring/decimal"
)

// CostScale is the number of fractional digits kept in computed costs.
const CostScale = 5

var million = decimal.NewFromInt(1_000_000)

// ModelPrice is expressed in USD per one million tokens.
type ModelPrice struct {
	ModelId     string
	InputPrice  decimal.Decimal
	OutputPrice decimal.Decimal
}

func price(id, input, output string) ModelPrice {
	return ModelPrice{
		ModelId:     id,
		InputPrice:  decimal.RequireFromString(input),
		OutputPrice: decimal.RequireFromString(output),
	}
}

var registry = func() map[string]ModelPrice {
	prices := []ModelPrice{
		price("chatgpt-4o-latest", "5.00", "15.00"),
		price("gpt-4o", "2.50", "10.00"),
		price("gpt-4o-mini", "0.15", "0.60"),
		price("o1", "15.00", "60.00"),
		price("o1-mini", "1.10", "4.40"),
		price("o3-mini", "1.10", "4.40"),
		price("gpt-3.5-turbo", "1.50", "2.00"),
		price("gpt-3.5-turbo-16k", "3.00", "4.00"),
		price("gpt-3.5-turbo-instruct", "1.50", "2.00"),
		price("gpt-4", "30.00", "60.00"),
		price("gpt-4-turbo", "30.00", "60.00"),
		price("gpt-4-32k", "60.00", "120.00"),
	}
	m := make(map[string]ModelPrice, len(prices))
	for _, p := range prices {
		m[p.ModelId] = p
	}
	return m
}()

// Lookup finds a model case-insensitively.
func Lookup(modelId string) (ModelPrice, error) {
	p, ok := registry[strings.ToLower(strings.TrimSpace(modelId))]
	if !ok {
		return ModelPrice{}, &orchestration.UnknownModelError{ModelId: modelId}
	}
	return p, nil
}

// Models lists every priced model id in lexical order.
func Models() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ComputeCost returns inputTokens/1e6*inputPrice + outputTokens/1e6*outputPrice rounded
// half-up to CostScale digits.
func ComputeCost(modelId string, inputTokens, outputTokens int64) (decimal.Decimal, error) {
	if inputTokens < 0 || outputTokens < 0 {
		return decimal.Zero, orchestration.NewInvalidArgument("tokens", "token counts cannot be negative")
	}
	p, err := Lookup(modelId)
	if err != nil {
		return decimal.Zero, err
	}

	input := decimal.NewFromInt(inputTokens).Div(million).Mul(p.InputPrice)
	output := decimal.NewFromInt(outputTokens).Div(million).Mul(p.OutputPrice)
	return input.Add(output).Round(CostScale), nil
}
