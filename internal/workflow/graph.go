// Package workflow models ComfyUI API-format job graphs and binds generation
// requests onto named templates.
package workflow

import (
	"sort"

	"github.com/AJ-Gazin/IdenticAI-API/internal/domain"
)

// Node kinds the binder targets inside a template.
const (
	KindPromptEncode         = "CLIPTextEncode"
	KindNegativePromptEncode = "CLIPTextEncodeNegative"
	KindNoise                = "RandomNoise"
	KindLoraLoader           = "LoraLoader"
)

// Node is one workflow graph node in ComfyUI API format. Nodes are created by
// template load and mutated only through SetParameter.
type Node struct {
	ClassType string         `json:"class_type"`
	Inputs    map[string]any `json:"inputs"`
}

// Graph maps node identifiers to nodes. Identifiers are unique; insertion
// order carries no meaning.
type Graph map[string]*Node

// SetParameter sets inputs[key] = value on the first node whose class type
// matches kind, scanning node ids in sorted order so the choice is
// deterministic. Templates are assumed to hold one node per kind; with
// duplicates only the first sorted id is patched (known limitation, kept from
// the template contract). A missing kind leaves the graph untouched and
// returns a NODE_KIND_MISSING error.
func SetParameter(g Graph, kind, key string, value any) error {
	for _, id := range sortedIDs(g) {
		node := g[id]
		if node == nil || node.ClassType != kind {
			continue
		}
		if node.Inputs == nil {
			node.Inputs = make(map[string]any)
		}
		node.Inputs[key] = value
		return nil
	}
	return domain.E(domain.KindNodeKindMissing, "%s node not found in workflow", kind)
}

func sortedIDs(g Graph) []string {
	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
