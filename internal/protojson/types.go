package protojson

// jsonProtocol and jsonNode mirror the JSON Schema in schema.go field for
// field; they exist purely as an unmarshal target, converted into the
// core's node.Protocol/node.Node by convertNode.
type jsonProtocol struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Version       string      `json:"version"`
	Header        *jsonNode   `json:"header"`
	Body          *jsonNode   `json:"body"`
	Tail          *jsonNode   `json:"tail"`
	ExtraChildren []*jsonNode `json:"extra_children"`
}

type jsonNode struct {
	ID                      string                   `json:"id"`
	Name                    string                   `json:"name"`
	Kind                    string                   `json:"kind"`
	LengthBits              int                      `json:"length_bits"`
	ValueKind               string                   `json:"value_kind"`
	Endian                  string                   `json:"endian"`
	Charset                 string                   `json:"charset"`
	Optional                bool                     `json:"optional"`
	Order                   float64                  `json:"order"`
	Literal                 string                   `json:"literal"`
	ForwardExpression       string                   `json:"forward_expression"`
	BackwardExpression      string                   `json:"backward_expression"`
	RangeSpecSrc            string                   `json:"range_spec"`
	Enumerants              []jsonEnumerant          `json:"enumerants"`
	ConditionalDependencies []jsonConditionalDep     `json:"conditional_dependencies"`
	Padding                 *jsonPadding             `json:"padding"`
	Group                   *jsonGroup               `json:"group"`
	TrimTrailingZeros       bool                     `json:"trim_trailing_zeros"`
	Children                []*jsonNode              `json:"children"`
}

type jsonEnumerant struct {
	Wire    string `json:"wire"`
	Display string `json:"display"`
}

type jsonConditionalDep struct {
	RefNodeID     string `json:"ref_node_id"`
	Expression    string `json:"expression"`
	MatchAction   string `json:"match_action"`
	NoMatchAction string `json:"no_match_action"`
	Priority      int    `json:"priority"`
}

type jsonPadding struct {
	Strategy         string `json:"strategy"`
	TargetLengthBits int    `json:"target_length_bits"`
	LengthExpression string `json:"length_expression"`
	PaddingValueHex  string `json:"padding_value_hex"`
	RepeatPattern    bool   `json:"repeat_pattern"`
	MinPaddingBits   int    `json:"min_padding_bits"`
	MaxPaddingBits   int    `json:"max_padding_bits"`
	Enabled          bool   `json:"enabled"`
	EnableCondition  string `json:"enable_condition"`
}

type jsonGroup struct {
	Count           int    `json:"count"`
	CountExpression string `json:"count_expression"`
	IDFormat        string `json:"id_format"`
}
