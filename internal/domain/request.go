package domain

import "strings"

// ModelVariant selects which workflow template drives the generation.
type ModelVariant string

const (
	ModelVariantDev     ModelVariant = "dev"
	ModelVariantSchnell ModelVariant = "schnell"
)

const (
	// MaxPromptLength bounds prompt and negative prompt text.
	MaxPromptLength = 500

	MinDimension = 64
	MaxDimension = 2048

	// AdapterNone is the sentinel that explicitly disables adapter loading.
	AdapterNone = "none"
)

// GenerationRequest is the immutable description of one generation attempt.
// A nil Seed means a fresh random seed is drawn at bind time, so repeated
// binds of the same request are intentionally not reproducible.
type GenerationRequest struct {
	Prompt         string
	NegativePrompt string
	Adapter        string
	Variant        ModelVariant
	Seed           *int64
	Width          int
	Height         int
}

// Validate checks the request fields against the accepted ranges. All
// violations surface as KindInvalidInput.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return E(KindInvalidInput, "prompt is required")
	}
	if len(r.Prompt) > MaxPromptLength {
		return E(KindInvalidInput, "prompt exceeds %d characters", MaxPromptLength)
	}
	if len(r.NegativePrompt) > MaxPromptLength {
		return E(KindInvalidInput, "negative_prompt exceeds %d characters", MaxPromptLength)
	}
	switch r.Variant {
	case ModelVariantDev, ModelVariantSchnell:
	default:
		return E(KindInvalidInput, "unsupported model variant %q", string(r.Variant))
	}
	if err := validateDimension("width", r.Width); err != nil {
		return err
	}
	return validateDimension("height", r.Height)
}

// WantsAdapter reports whether the request asks for a LoRA adapter. The
// "none" sentinel is case-insensitive and never triggers a file lookup.
func (r GenerationRequest) WantsAdapter() bool {
	name := strings.TrimSpace(r.Adapter)
	return name != "" && !strings.EqualFold(name, AdapterNone)
}

func validateDimension(field string, v int) error {
	if v < MinDimension || v > MaxDimension {
		return E(KindInvalidInput, "%s must be between %d and %d", field, MinDimension, MaxDimension)
	}
	if v%8 != 0 {
		return E(KindInvalidInput, "%s must be a multiple of 8", field)
	}
	return nil
}
