package formatter

import (
	"encoding/json"

	"github.com/thomasrohde/lisp0/pkg/env"
	"github.com/thomasrohde/lisp0/pkg/sexpr"
)

// ValueToJSON marshals a value to JSON bytes. Proper lists become arrays,
// dotted pairs {"car":..,"cdr":..}, and values with no JSON counterpart an
// object keyed by their kind.
func ValueToJSON(v *sexpr.Value, e *env.Environment) ([]byte, error) {
	return json.Marshal(valueToRaw(v, e))
}

type pairJSON struct {
	Car any `json:"car"`
	Cdr any `json:"cdr"`
}

func valueToRaw(v *sexpr.Value, e *env.Environment) any {
	if v == nil {
		return nil
	}

	switch v.Tag {
	case sexpr.TagUndefined, sexpr.TagVoid:
		return nil

	case sexpr.TagFixnum:
		return v.Num

	case sexpr.TagBool:
		return v.Num != 0

	case sexpr.TagString:
		return v.Str

	case sexpr.TagSymbol:
		return map[string]string{"symbol": v.Str}

	case sexpr.TagBuiltin:
		return map[string]string{"builtin": BuiltinName(v)}

	case sexpr.TagFunction:
		return map[string]string{"procedure": ProcedureName(v, e)}

	case sexpr.TagError:
		return map[string]string{"error": v.Code().String()}

	case sexpr.TagSExpr:
		return cellToRaw(v.Cell, e)
	}

	return nil
}

func cellToRaw(c *sexpr.Cell, e *env.Environment) any {
	if c.IsPair() {
		return pairJSON{Car: valueToRaw(c.Car, e), Cdr: valueToRaw(c.Cdr, e)}
	}
	items := []any{}
	for !c.IsEmpty() {
		if c.IsPair() {
			// improper tail: nest the remaining pair as the last element
			items = append(items, pairJSON{Car: valueToRaw(c.Car, e), Cdr: valueToRaw(c.Cdr, e)})
			break
		}
		items = append(items, valueToRaw(c.Car, e))
		c = c.Next()
	}
	return items
}
