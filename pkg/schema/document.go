package schema

// DocumentVersion is the current workflow document format version.
const DocumentVersion = "1.0"

// WorkflowDocument is the portable serialized form of a graph, used for
// save/load/export/import and templates. It carries no transient execution
// state: a persisted workflow never resumes mid-generation.
type WorkflowDocument struct {
	Version   string  `json:"version"`
	Name      string  `json:"name"`
	CreatedAt string  `json:"createdAt,omitempty"`
	Nodes     []*Node `json:"nodes"`
	Edges     []*Edge `json:"edges"`
}
