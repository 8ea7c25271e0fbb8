package pricing

import (
	"errors"
	"testing"

	"teamcollab-be/pkg/orchestration"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCost(t *testing.T) {
	tests := []struct {
		name   string
		model  string
		input  int64
		output int64
		want   string
	}{
		{name: "zero tokens", model: "gpt-4o", input: 0, output: 0, want: "0"},
		{name: "one million each", model: "gpt-4o", input: 1_000_000, output: 1_000_000, want: "12.5"},
		{name: "mini small call", model: "gpt-4o-mini", input: 1000, output: 500, want: "0.00045"},
		{name: "case insensitive", model: "GPT-4", input: 10, output: 20, want: "0.0015"},
		{name: "rounds half up", model: "gpt-4o-mini", input: 1, output: 0, want: "0"},
		{name: "rounds half up at fifth digit", model: "o1-mini", input: 5, output: 0, want: "0.00001"},
		{name: "gpt-4-32k output", model: "gpt-4-32k", input: 0, output: 250, want: "0.03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeCost(tt.model, tt.input, tt.output)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestComputeCostMatchesFormula(t *testing.T) {
	for _, id := range Models() {
		p, err := Lookup(id)
		require.NoError(t, err)
		for _, tokens := range [][2]int64{{0, 0}, {1, 1}, {123, 4567}, {999_999, 1}, {2_500_000, 750_000}} {
			want := decimal.NewFromInt(tokens[0]).Div(million).Mul(p.InputPrice).
				Add(decimal.NewFromInt(tokens[1]).Div(million).Mul(p.OutputPrice)).
				Round(CostScale)
			got, err := ComputeCost(id, tokens[0], tokens[1])
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "%s %v", id, tokens)
			assert.LessOrEqual(t, -got.Exponent(), int32(CostScale))
		}
	}
}

func TestComputeCostErrors(t *testing.T) {
	_, err := ComputeCost("claude-unknown", 1, 1)
	var unknown *orchestration.UnknownModelError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "claude-unknown", unknown.ModelId)
	assert.True(t, errors.Is(err, orchestration.ErrInvalidArgument))

	_, err = ComputeCost("gpt-4o", -1, 0)
	var invalid *orchestration.InvalidArgumentError
	assert.True(t, errors.As(err, &invalid))

	_, err = ComputeCost("gpt-4o", 0, -5)
	assert.True(t, errors.Is(err, orchestration.ErrInvalidArgument))
}

func TestModelsListsRegistry(t *testing.T) {
	models := Models()
	assert.Len(t, models, 12)
	assert.Contains(t, models, "o3-mini")
}
