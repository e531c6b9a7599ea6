package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AJ-Gazin/IdenticAI-API/internal/domain"
)

// Loader resolves model variants to workflow template files on disk and
// parses them into graphs. Every Load returns a fresh graph value, so callers
// own their copy for the lifetime of one job.
type Loader struct {
	paths map[domain.ModelVariant]string
}

// NewLoader maps the known model variants to template files under dir.
func NewLoader(dir string) *Loader {
	return &Loader{paths: map[domain.ModelVariant]string{
		domain.ModelVariantDev:     filepath.Join(dir, "flux-dev-workflow.json"),
		domain.ModelVariantSchnell: filepath.Join(dir, "flux-schnell-workflow.json"),
	}}
}

// Load fetches and parses the template for variant. Unknown variants fail
// with TEMPLATE_NOT_FOUND; unreadable or structurally broken templates fail
// with TEMPLATE_INVALID.
func (l *Loader) Load(variant domain.ModelVariant) (Graph, error) {
	path, ok := l.paths[variant]
	if !ok {
		return nil, domain.E(domain.KindTemplateNotFound, "no workflow template for variant %q", string(variant))
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.WrapE(domain.KindTemplateNotFound, fmt.Sprintf("workflow template %s missing", filepath.Base(path)), err)
		}
		return nil, domain.WrapE(domain.KindTemplateInvalid, "read workflow template", err)
	}
	var graph Graph
	if err := json.Unmarshal(raw, &graph); err != nil {
		return nil, domain.WrapE(domain.KindTemplateInvalid, "parse workflow template", err)
	}
	if err := validate(graph); err != nil {
		return nil, err
	}
	return graph, nil
}

// validate checks the graph invariant: every node reference inside an input
// points at an existing node. ComfyUI encodes references as ["<node id>", n].
func validate(g Graph) error {
	if len(g) == 0 {
		return domain.E(domain.KindTemplateInvalid, "workflow template has no nodes")
	}
	for id, node := range g {
		if node == nil || node.ClassType == "" {
			return domain.E(domain.KindTemplateInvalid, "node %s has no class_type", id)
		}
		for key, value := range node.Inputs {
			ref, ok := nodeRef(value)
			if !ok {
				continue
			}
			if _, exists := g[ref]; !exists {
				return domain.E(domain.KindTemplateInvalid, "node %s input %s references unknown node %s", id, key, ref)
			}
		}
	}
	return nil
}

func nodeRef(value any) (string, bool) {
	pair, ok := value.([]any)
	if !ok || len(pair) != 2 {
		return "", false
	}
	id, ok := pair[0].(string)
	if !ok {
		return "", false
	}
	if _, ok := pair[1].(float64); !ok {
		return "", false
	}
	return id, true
}
