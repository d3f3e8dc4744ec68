package workflow

import (
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/lumenworks/reelgraph/pkg/schema"
)

//go:embed templates/*.json
var templateFS embed.FS

// TemplateNames lists the built-in template identifiers, sorted.
func TemplateNames() []string {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// LoadTemplate parses a built-in template document by identifier.
func LoadTemplate(name string) (*schema.WorkflowDocument, error) {
	data, err := templateFS.ReadFile(path.Join("templates", name+".json"))
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "template %q not found", name)
	}
	return Parse(data)
}
