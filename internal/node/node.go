// Package node defines the protocol tree: immutable structural metadata for
// every field plus the mutable per-encode/decode state that is reset on
// each call. It is the shared vocabulary every other package operates on.
package node

import "fmt"

// Kind distinguishes the small set of polymorphic node shapes. Dispatch on
// Kind happens in a handful of switch statements in the codec and scheduler
// packages rather than through an interface hierarchy — the tree is a flat
// tagged variant, not a pile of implementations.
type Kind uint8

const (
	KindLeaf Kind = iota
	KindStructural
	KindNodeGroup
	KindPadding
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindStructural:
		return "structural"
	case KindNodeGroup:
		return "node-group"
	case KindPadding:
		return "padding"
	default:
		return "unknown"
	}
}

// ValueKind is the wire value type of a leaf node.
type ValueKind uint8

const (
	ValueHex ValueKind = iota
	ValueBit
	ValueUint
	ValueInt
	ValueFloat
	ValueString
	ValueTime
)

func (v ValueKind) String() string {
	switch v {
	case ValueHex:
		return "HEX"
	case ValueBit:
		return "BIT"
	case ValueUint:
		return "UINT"
	case ValueInt:
		return "INT"
	case ValueFloat:
		return "FLOAT"
	case ValueString:
		return "STRING"
	case ValueTime:
		return "TIME"
	default:
		return "UNKNOWN"
	}
}

// Endian mirrors bitbuf.Endian without importing it, keeping the data model
// free of a dependency on the serialization layer.
type Endian uint8

const (
	BigEndian Endian = iota
	LittleEndian
)

// ConditionalAction is the effect a conditional-dependency rule applies to
// its owning node when its expression matches (or doesn't).
type ConditionalAction string

const (
	ActionEnable     ConditionalAction = "ENABLE"
	ActionDisable    ConditionalAction = "DISABLE"
	ActionSetDefault ConditionalAction = "SET_DEFAULT"
	ActionClearValue ConditionalAction = "CLEAR_VALUE"
)

// ConditionalDependency is one rule in a node's ordered (priority ascending)
// list of enable/disable conditions.
type ConditionalDependency struct {
	RefNodeID     string
	Expression    string
	MatchAction   ConditionalAction
	NoMatchAction ConditionalAction
	Priority      int
}

// PaddingStrategy selects how a padding node's length is computed.
type PaddingStrategy string

const (
	PadFixedLength   PaddingStrategy = "FIXED_LENGTH"
	PadAlignment     PaddingStrategy = "ALIGNMENT"
	PadDynamic       PaddingStrategy = "DYNAMIC"
	PadFillContainer PaddingStrategy = "FILL_CONTAINER"
)

// PaddingConfig holds the configuration of a padding node; present iff the
// node's Kind is KindPadding.
type PaddingConfig struct {
	Strategy         PaddingStrategy
	TargetLengthBits int    // FIXED_LENGTH / ALIGNMENT: target length in bytes * 8 semantics handled by caller
	LengthExpression string // DYNAMIC
	PaddingValue     []byte // fill pattern
	RepeatPattern    bool
	MinPaddingBits   int
	MaxPaddingBits   int
	Enabled          bool
	EnableCondition  string // evaluated once; empty means always enabled
}

// GroupConfig holds the repetition configuration of a node-group node;
// present iff the node's Kind is KindNodeGroup. A node group declares
// exactly one template child in its Children slice; the preprocessing
// expansion step (internal/groupexpand) replaces the group with Count
// clones of that template before the tree reaches the rest of the core
// (§9 design note).
type GroupConfig struct {
	Count           int    // static repetition count; used when CountExpression is empty
	CountExpression string // optional constant arithmetic expression, evaluated with no variables
	IDFormat        string // fmt.Sprintf pattern taking the original id and the 1-based index; "%s_%d" when empty
}

// Interval is one member of a RangeSpec union, e.g. "[a,b)".
type Interval struct {
	Lo         int64
	Hi         int64
	LoInclusive bool
	HiInclusive bool
	Singleton   bool // "[a]"
}

// Contains reports whether v falls inside the interval.
func (iv Interval) Contains(v int64) bool {
	if iv.Singleton {
		return v == iv.Lo
	}
	if iv.LoInclusive {
		if v < iv.Lo {
			return false
		}
	} else if v <= iv.Lo {
		return false
	}
	if iv.HiInclusive {
		if v > iv.Hi {
			return false
		}
	} else if v >= iv.Hi {
		return false
	}
	return true
}

// RangeSpec is a union of intervals separated by "||" in source form.
type RangeSpec struct {
	Intervals []Interval
	Source    string
}

// Contains reports whether v lies in at least one interval.
func (r RangeSpec) Contains(v int64) bool {
	for _, iv := range r.Intervals {
		if iv.Contains(v) {
			return true
		}
	}
	return false
}

// Enumerant pairs a wire literal with its human-readable display text.
type Enumerant struct {
	Wire    string
	Display string
}

// Node is the universal tree element. Structural metadata (everything
// except the State block) is populated once by the loader and never mutated
// by the core; State is reset at the start of every encode/decode call.
type Node struct {
	ID      string
	Name    string

	Kind        Kind
	LengthBits  int // 0 == computed at encode time (HEX, padding only)
	ValueKind   ValueKind
	Endian      Endian
	Charset     string // STRING only, default "utf-8"
	Optional    bool
	Order       float64

	Literal string // literal source value, if any ("" if absent)

	ForwardExpression  string
	BackwardExpression string

	RangeSpec  *RangeSpec
	Enumerants []Enumerant

	ConditionalDependencies []ConditionalDependency

	Padding *PaddingConfig // non-nil iff Kind == KindPadding
	Group   *GroupConfig   // non-nil iff Kind == KindNodeGroup

	TrimTrailingZeros bool // STRING decode option

	Children []*Node

	State State
}

// State is the mutable per-encode/decode scratch data on a node, reset by
// Reset() at the start of every call.
type State struct {
	Value            string // user-facing literal or computed source value
	ForwardResult    string // result of evaluating ForwardExpression
	DecodedValue     string // raw decoded wire value, pre backward-expression
	TransformedValue string // post-backward-expression value surfaced to callers
	SourceBytes      []byte

	Enabled       bool
	EnabledReason string

	ActualLengthBits int // resolved width, for padding/unsized hex

	StartBit int
	EndBit   int

	ValidationStatus string
}

// Reset clears all per-encode/decode mutable state on n and its descendants.
func (n *Node) Reset() {
	n.State = State{Enabled: true}
	for _, c := range n.Children {
		c.Reset()
	}
}

// IsStructural reports whether n contributes no bits of its own, only the
// concatenation of its enabled children.
func (n *Node) IsStructural() bool {
	return n.Kind == KindStructural || n.Kind == KindNodeGroup
}

// Leaves appends, in tree order, every non-structural descendant of n
// (including n itself if it is a leaf or padding node) to out.
func (n *Node) Leaves(out []*Node) []*Node {
	if !n.IsStructural() {
		return append(out, n)
	}
	for _, c := range n.Children {
		out = c.Leaves(out)
	}
	return out
}

// Protocol is the root container: three optional structural sections plus
// any stray top-level children, matching the data model in the spec.
type Protocol struct {
	ID      string
	Name    string
	Version string // optional semver tag, diagnostics only

	Header *Node
	Body   *Node
	Tail   *Node

	ExtraChildren []*Node
}

// Sections returns the protocol's top-level sections in header/body/tail
// order, skipping any that are nil. This is the canonical pre-order root
// used to break topological-sort ties (§4.4).
func (p *Protocol) Sections() []*Node {
	var out []*Node
	if p.Header != nil {
		out = append(out, p.Header)
	}
	if p.Body != nil {
		out = append(out, p.Body)
	}
	if p.Tail != nil {
		out = append(out, p.Tail)
	}
	out = append(out, p.ExtraChildren...)
	return out
}

// AllNodes returns every node in the protocol (structural and leaf) in
// pre-order: header subtree, then body subtree, then tail subtree.
func (p *Protocol) AllNodes() []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, s := range p.Sections() {
		walk(s)
	}
	return out
}

// ByID indexes every node in the protocol by its id. Returns an error if any
// id is duplicated, matching invariant 1 in the spec.
func (p *Protocol) ByID() (map[string]*Node, error) {
	idx := make(map[string]*Node)
	for _, n := range p.AllNodes() {
		if n.ID == "" {
			continue
		}
		if _, dup := idx[n.ID]; dup {
			return nil, fmt.Errorf("node: duplicate id %q within protocol %q", n.ID, p.ID)
		}
		idx[n.ID] = n
	}
	return idx, nil
}

// Reset clears per-encode/decode mutable state across the whole tree.
func (p *Protocol) Reset() {
	for _, s := range p.Sections() {
		s.Reset()
	}
}
