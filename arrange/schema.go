package arrange

import (
	"encoding/json"
	"fmt"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FunctionName is the tool the model must call with the arranged layout.
const FunctionName = "layout_objects"

// wirePosition is an item's top-left on the board.
type wirePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// wireSize is an item's width and height.
type wireSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// wireItem is the item shape sent to and returned by the model.
type wireItem struct {
	ID          string       `json:"id" jsonschema:"description=Unique object ID"`
	Description string       `json:"description" jsonschema:"description=Natural language description used for semantic grouping"`
	Position    wirePosition `json:"position"`
	Size        wireSize     `json:"size"`
	GroupID     string       `json:"groupId,omitempty" jsonschema:"description=Optional cluster ID marking the semantic group"`
}

// layoutArgs is the argument object of the layout function.
type layoutArgs struct {
	Items []wireItem `json:"items" jsonschema:"description=The arranged items with the same structure as the input"`
}

var (
	schemaOnce     sync.Once
	schemaJSON     []byte
	schemaParams   map[string]any
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

// parametersSchema returns the layout function's parameter schema in two
// forms: a map for the tool definition and a compiled validator for the
// model's arguments.
func parametersSchema() (map[string]any, *jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		r := &invopop.Reflector{
			Anonymous:      true,
			DoNotReference: true,
			ExpandedStruct: true,
		}
		schemaJSON, schemaErr = json.Marshal(r.Reflect(&layoutArgs{}))
		if schemaErr != nil {
			schemaErr = fmt.Errorf("encode layout schema: %w", schemaErr)
			return
		}
		schemaCompiled, schemaErr = jsonschema.CompileString("layout_objects.schema.json", string(schemaJSON))
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile layout schema: %w", schemaErr)
			return
		}
		if schemaErr = json.Unmarshal(schemaJSON, &schemaParams); schemaErr != nil {
			schemaErr = fmt.Errorf("decode layout schema: %w", schemaErr)
			return
		}
		delete(schemaParams, "$schema")
		delete(schemaParams, "$id")
	})
	return schemaParams, schemaCompiled, schemaErr
}

// ParametersSchemaJSON returns the JSON Schema of the layout function's
// arguments.
func ParametersSchemaJSON() ([]byte, error) {
	if _, _, err := parametersSchema(); err != nil {
		return nil, err
	}
	return schemaJSON, nil
}

// decodeArgs validates raw tool-call arguments against the schema and
// decodes them.
func decodeArgs(raw string) (layoutArgs, error) {
	_, compiled, err := parametersSchema()
	if err != nil {
		return layoutArgs{}, err
	}
	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return layoutArgs{}, fmt.Errorf("decode layout arguments: %w", err)
	}
	if err := compiled.Validate(generic); err != nil {
		return layoutArgs{}, fmt.Errorf("layout arguments invalid: %w", err)
	}
	var args layoutArgs
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return layoutArgs{}, fmt.Errorf("decode layout arguments: %w", err)
	}
	return args, nil
}
