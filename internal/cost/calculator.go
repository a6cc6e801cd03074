// Package cost prices model provider token usage.
package cost

// ModelRate holds per-model token pricing in USD per million tokens.
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Rates holds pricing per provider, keyed by model ID.
type Rates struct {
	Anthropic map[string]ModelRate `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI    map[string]ModelRate `yaml:"openai" mapstructure:"openai"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator. Models missing from rates fall back
// to DefaultRates.
func NewCalculator(rates Rates) *Calculator {
	def := DefaultRates()
	merged := Rates{
		Anthropic: make(map[string]ModelRate, len(def.Anthropic)),
		OpenAI:    make(map[string]ModelRate, len(def.OpenAI)),
	}
	for k, v := range def.Anthropic {
		merged.Anthropic[k] = v
	}
	for k, v := range def.OpenAI {
		merged.OpenAI[k] = v
	}
	for k, v := range rates.Anthropic {
		merged.Anthropic[k] = v
	}
	for k, v := range rates.OpenAI {
		merged.OpenAI[k] = v
	}
	return &Calculator{rates: merged}
}

// Claude computes the cost of one Claude call. Unknown models cost 0.
func (c *Calculator) Claude(model string, input, output int64) float64 {
	return price(c.rates.Anthropic, model, input, output)
}

// OpenAI computes the cost of one OpenAI call. Unknown models cost 0.
func (c *Calculator) OpenAI(model string, input, output int64) float64 {
	return price(c.rates.OpenAI, model, input, output)
}

func price(table map[string]ModelRate, model string, input, output int64) float64 {
	rate, ok := table[model]
	if !ok {
		return 0
	}
	return (float64(input)/1e6)*rate.Input + (float64(output)/1e6)*rate.Output
}

// DefaultRates returns list pricing for the models the pipeline uses.
func DefaultRates() Rates {
	return Rates{
		Anthropic: map[string]ModelRate{
			"claude-3-5-haiku-20241022":  {Input: 0.80, Output: 4.00},
			"claude-haiku-4-5-20251001":  {Input: 1.00, Output: 5.00},
			"claude-opus-4-5-20251101":   {Input: 5.00, Output: 25.00},
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		},
		OpenAI: map[string]ModelRate{
			"gpt-4.1":      {Input: 2.00, Output: 8.00},
			"gpt-4.1-mini": {Input: 0.40, Output: 1.60},
		},
	}
}
