package schema

// NodeKind enumerates the fixed vocabulary of canvas node types.
// A node's kind determines its input/output contract and payload shape,
// and is immutable once the node is created.
type NodeKind string

const (
	KindText          NodeKind = "text"
	KindImage         NodeKind = "image"
	KindVideo         NodeKind = "video"
	KindMasterPrompt  NodeKind = "masterPrompt"
	KindModifier      NodeKind = "modifier"
	KindGenerator     NodeKind = "generator"
	KindCamera        NodeKind = "camera"
	KindImageUpload   NodeKind = "imageUpload"
	KindArraySplitter NodeKind = "arraySplitter"
	KindComment       NodeKind = "comment"
	KindEnhancement   NodeKind = "enhancement"
	KindCameraAngle   NodeKind = "cameraAngle"
)

// DataKind is the small fixed vocabulary of values flowing along edges.
type DataKind string

const (
	DataText  DataKind = "text"
	DataImage DataKind = "image"
	DataVideo DataKind = "video"
	DataAny   DataKind = "any"
)

// ExecState is the transient per-node execution status.
// Never persisted: serialization resets every node to idle.
type ExecState string

const (
	StateIdle    ExecState = "idle"
	StateLoading ExecState = "loading"
	StateSuccess ExecState = "success"
	StateError   ExecState = "error"
)

// Payload keys shared across node kinds. Kind-specific fields live in the
// open Data map and are decoded into typed option structs at the point of
// use (executor dispatch, serialization).
const (
	FieldState    = "state"
	FieldProgress = "progress"
	FieldError    = "error"
	FieldContent  = "content"
	FieldImageURL = "imageUrl"
	FieldVideoURL = "videoUrl"
	FieldSettings = "settings"
)

// Position is an opaque 2D canvas coordinate. The engine never interprets
// it; it is stored so documents round-trip through the presentation layer.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one vertex of the workflow graph. ID and Kind are immutable
// after creation; Data is an open kind-specific payload merged shallowly
// by update operations.
type Node struct {
	ID       string         `json:"id"`
	Kind     NodeKind       `json:"type"`
	Position Position       `json:"position"`
	Data     map[string]any `json:"data,omitempty"`
}

// State reads the node's execution state, defaulting to idle.
func (n *Node) State() ExecState {
	if n.Data == nil {
		return StateIdle
	}
	if s, ok := n.Data[FieldState].(string); ok && s != "" {
		return ExecState(s)
	}
	return StateIdle
}

// Content reads the node's text content field, or "" if absent.
func (n *Node) Content() string {
	if n.Data == nil {
		return ""
	}
	s, _ := n.Data[FieldContent].(string)
	return s
}

// StringField reads an arbitrary string payload field, or "" if absent.
func (n *Node) StringField(key string) string {
	if n.Data == nil {
		return ""
	}
	s, _ := n.Data[key].(string)
	return s
}

// Edge is a directed connection between two nodes. Handles discriminate
// sub-ports on nodes that expose more than one output (array splitter
// branches, video start/end image ports).
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Snapshot is an immutable deep copy of the graph at one point in time,
// used by the undo/redo history. Snapshots never alias live graph objects.
type Snapshot struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// GeneratorSettings is the typed view of a generator-family node's
// "settings" payload sub-object.
type GeneratorSettings struct {
	Model      string  `json:"model,omitempty"`
	Resolution string  `json:"resolution,omitempty"`
	Seed       int     `json:"seed,omitempty"`
	Duration   int     `json:"duration,omitempty"`
	FPS        int     `json:"fps,omitempty"`
	Guidance   float64 `json:"guidance,omitempty"`
	Angle      string  `json:"angle,omitempty"`
	View       string  `json:"view,omitempty"`
}
