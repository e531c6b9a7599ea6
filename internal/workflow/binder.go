package workflow

import (
	"math/rand"
	"strings"

	"github.com/AJ-Gazin/IdenticAI-API/internal/domain"
)

// AdapterLibrary is the slice of the LoRA directory the binder needs.
type AdapterLibrary interface {
	Exists(name string) bool
	List() []string
}

// Binder injects request parameters into a caller-owned graph.
type Binder struct {
	adapters AdapterLibrary
	seedFn   func() int64
}

// NewBinder wires a binder against the adapter library.
func NewBinder(adapters AdapterLibrary) *Binder {
	return &Binder{
		adapters: adapters,
		seedFn:   func() int64 { return rand.Int63n(1 << 32) },
	}
}

// Bind applies the request onto g in place: prompt, optional negative prompt,
// seed, and adapter selection. Seeds are drawn at bind time when the request
// carries none, so two binds of a seedless request diverge on purpose.
func (b *Binder) Bind(g Graph, req domain.GenerationRequest) error {
	if err := SetParameter(g, KindPromptEncode, "text", req.Prompt); err != nil {
		return err
	}
	if req.NegativePrompt != "" {
		if err := SetParameter(g, KindNegativePromptEncode, "text", req.NegativePrompt); err != nil {
			return err
		}
	}
	seed := b.seedFn()
	if req.Seed != nil {
		seed = *req.Seed
	}
	if err := SetParameter(g, KindNoise, "noise_seed", seed); err != nil {
		return err
	}
	return b.bindAdapter(g, req)
}

// bindAdapter either mounts the requested adapter at full strength or zeroes
// the loader's strength fields so the template's default adapter stays off.
func (b *Binder) bindAdapter(g Graph, req domain.GenerationRequest) error {
	if !req.WantsAdapter() {
		if err := SetParameter(g, KindLoraLoader, "strength_model", 0.0); err != nil {
			return err
		}
		return SetParameter(g, KindLoraLoader, "strength_clip", 0.0)
	}
	name := strings.TrimSpace(req.Adapter)
	if !b.adapters.Exists(name) {
		available := strings.Join(b.adapters.List(), ", ")
		if available == "" {
			available = "(none)"
		}
		return domain.E(domain.KindAdapterNotFound, "adapter %q not found. Available: %s", name, available)
	}
	if err := SetParameter(g, KindLoraLoader, "lora_name", name); err != nil {
		return err
	}
	if err := SetParameter(g, KindLoraLoader, "strength_model", 1.0); err != nil {
		return err
	}
	return SetParameter(g, KindLoraLoader, "strength_clip", 1.0)
}
