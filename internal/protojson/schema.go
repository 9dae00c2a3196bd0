package protojson

// The JSON Schema below is intentionally permissive on field shape (most
// fields are optional with core-level defaults) and strict on structure
// (additionalProperties false, enum-constrained kind/strategy fields) so
// malformed protocol documents fail fast with a precise pointer instead of
// surfacing as a confusing panic deeper in the core.
const protocolSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "name": {"type": "string"},
    "version": {"type": "string"},
    "header": {"$ref": "#/$defs/node"},
    "body": {"$ref": "#/$defs/node"},
    "tail": {"$ref": "#/$defs/node"},
    "extra_children": {"type": "array", "items": {"$ref": "#/$defs/node"}}
  },
  "additionalProperties": false,
  "$defs": {
    "node": {
      "type": "object",
      "required": ["id", "kind"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "name": {"type": "string"},
        "kind": {"type": "string", "enum": ["leaf", "structural", "node-group", "padding"]},
        "length_bits": {"type": "integer", "minimum": 0},
        "value_kind": {"type": "string", "enum": ["HEX", "BIT", "UINT", "INT", "FLOAT", "STRING", "TIME"]},
        "endian": {"type": "string", "enum": ["big", "little"]},
        "charset": {"type": "string"},
        "optional": {"type": "boolean"},
        "order": {"type": "number"},
        "literal": {"type": "string"},
        "forward_expression": {"type": "string"},
        "backward_expression": {"type": "string"},
        "range_spec": {"type": "string"},
        "enumerants": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["wire", "display"],
            "properties": {"wire": {"type": "string"}, "display": {"type": "string"}},
            "additionalProperties": false
          }
        },
        "conditional_dependencies": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["ref_node_id", "expression", "match_action", "no_match_action", "priority"],
            "properties": {
              "ref_node_id": {"type": "string"},
              "expression": {"type": "string"},
              "match_action": {"type": "string", "enum": ["ENABLE", "DISABLE", "SET_DEFAULT", "CLEAR_VALUE"]},
              "no_match_action": {"type": "string", "enum": ["ENABLE", "DISABLE", "SET_DEFAULT", "CLEAR_VALUE", ""]},
              "priority": {"type": "integer"}
            },
            "additionalProperties": false
          }
        },
        "padding": {
          "type": "object",
          "properties": {
            "strategy": {"type": "string", "enum": ["FIXED_LENGTH", "ALIGNMENT", "DYNAMIC", "FILL_CONTAINER"]},
            "target_length_bits": {"type": "integer"},
            "length_expression": {"type": "string"},
            "padding_value_hex": {"type": "string"},
            "repeat_pattern": {"type": "boolean"},
            "min_padding_bits": {"type": "integer"},
            "max_padding_bits": {"type": "integer"},
            "enabled": {"type": "boolean"},
            "enable_condition": {"type": "string"}
          },
          "additionalProperties": false
        },
        "group": {
          "type": "object",
          "properties": {
            "count": {"type": "integer", "minimum": 0},
            "count_expression": {"type": "string"},
            "id_format": {"type": "string"}
          },
          "additionalProperties": false
        },
        "trim_trailing_zeros": {"type": "boolean"},
        "children": {"type": "array", "items": {"$ref": "#/$defs/node"}}
      },
      "additionalProperties": false
    }
  }
}`
