package planner

import (
	"bytes"
	"encoding/json"
	"net/netip"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pseudomuto/ndc-clickhouse/pkg/ast"
	"github.com/pseudomuto/ndc-clickhouse/pkg/parser"
	"github.com/shopspring/decimal"
)

// castValue converts a JSON value from the request into a constant of type dt.
// The value is checked against the type so that malformed input is reported as a
// bad request rather than a ClickHouse error.
func castValue(raw json.RawMessage, dt *parser.DataType) (ast.Value, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return castAny(nil, dt)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "invalid JSON value")
	}

	return castAny(v, dt)
}

func castAny(v any, dt *parser.DataType) (ast.Value, error) {
	switch {
	case dt.Nullable != nil:
		if v == nil {
			return ast.Null{}, nil
		}
		return castAny(v, dt.Nullable.Type)
	case dt.LowCardinality != nil:
		return castAny(v, dt.LowCardinality.Type)
	case v == nil:
		return nil, errors.Errorf("null is not a valid %s", dt)
	case dt.Array != nil:
		items, ok := v.([]any)
		if !ok {
			return nil, mismatch(v, dt)
		}

		arr := make(ast.Array, 0, len(items))
		for i, item := range items {
			value, err := castAny(item, dt.Array.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}
			arr = append(arr, value)
		}
		return arr, nil
	case dt.Tuple != nil:
		return castTuple(v, dt)
	case dt.Map != nil:
		return castMap(v, dt)
	case dt.Enum != nil, dt.FixedString != nil, dt.DateTime != nil, dt.DateTime64 != nil:
		return castString(v, dt)
	case dt.Decimal != nil, dt.SizedDecimal != nil:
		return castDecimal(v, dt)
	case dt.Scalar != nil:
		return castScalar(v, dt)
	default:
		return nil, errors.Errorf("unsupported cast to %s", dt)
	}
}

func castScalar(v any, dt *parser.DataType) (ast.Value, error) {
	switch s := *dt.Scalar; s {
	case parser.Bool:
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch(v, dt)
		}
		return ast.Boolean(b), nil
	case parser.String, parser.Date, parser.Date32:
		return castString(v, dt)
	case parser.UInt8, parser.UInt16, parser.UInt32, parser.UInt64:
		return castInteger(v, dt, func(n string) error {
			_, err := strconv.ParseUint(n, 10, bitSize(s))
			return err
		})
	case parser.Int8, parser.Int16, parser.Int32, parser.Int64:
		return castInteger(v, dt, func(n string) error {
			_, err := strconv.ParseInt(n, 10, bitSize(s))
			return err
		})
	case parser.UInt128, parser.UInt256:
		return castInteger(v, dt, func(n string) error {
			if len(n) > 0 && n[0] == '-' {
				return errors.New("value is negative")
			}
			return nil
		})
	case parser.Int128, parser.Int256:
		return castInteger(v, dt, func(string) error { return nil })
	case parser.Float32, parser.Float64:
		n, ok := v.(json.Number)
		if !ok {
			return nil, mismatch(v, dt)
		}
		if _, err := n.Float64(); err != nil {
			return nil, errors.Wrapf(err, "invalid %s", dt)
		}
		return ast.Number(n.String()), nil
	case parser.UUID:
		str, ok := v.(string)
		if !ok {
			return nil, mismatch(v, dt)
		}
		id, err := uuid.Parse(str)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", dt)
		}
		return ast.String(id.String()), nil
	case parser.IPv4, parser.IPv6:
		str, ok := v.(string)
		if !ok {
			return nil, mismatch(v, dt)
		}
		addr, err := netip.ParseAddr(str)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", dt)
		}
		if s == parser.IPv4 && !addr.Is4() {
			return nil, errors.Errorf("invalid %s: %q is not an IPv4 address", dt, str)
		}
		return ast.String(addr.String()), nil
	case parser.JSON:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal JSON value")
		}
		return ast.String(data), nil
	default:
		return nil, errors.Errorf("unsupported cast to %s", dt)
	}
}

func castString(v any, dt *parser.DataType) (ast.Value, error) {
	str, ok := v.(string)
	if !ok {
		return nil, mismatch(v, dt)
	}

	return ast.String(str), nil
}

// castInteger accepts any JSON number (or numeric string) with an integral value,
// normalizing exponent notation, and applies check to the decimal digits.
func castInteger(v any, dt *parser.DataType, check func(string) error) (ast.Value, error) {
	d, err := toDecimal(v, dt)
	if err != nil {
		return nil, err
	}
	if !d.IsInteger() {
		return nil, errors.Errorf("invalid %s: %s is not an integer", dt, d)
	}

	n := d.String()
	if err := check(n); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", dt)
	}

	return ast.Number(n), nil
}

func castDecimal(v any, dt *parser.DataType) (ast.Value, error) {
	d, err := toDecimal(v, dt)
	if err != nil {
		return nil, err
	}

	return ast.Number(d.String()), nil
}

func toDecimal(v any, dt *parser.DataType) (decimal.Decimal, error) {
	var text string
	switch n := v.(type) {
	case json.Number:
		text = n.String()
	case string:
		text = n
	default:
		return decimal.Decimal{}, mismatch(v, dt)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "invalid %s", dt)
	}

	return d, nil
}

func castTuple(v any, dt *parser.DataType) (ast.Value, error) {
	elements := dt.Tuple.Elements
	named := len(elements) > 0 && elements[0].Name != nil

	if named {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Errorf("expected named tuple %s, got %s", dt, describe(v))
		}

		tuple := make(ast.Tuple, 0, len(elements))
		for _, e := range elements {
			field, ok := obj[e.Name.Value]
			if !ok {
				return nil, errors.Errorf("missing named field %q of %s", e.Name.Value, dt)
			}

			value, err := castAny(field, e.ElementType())
			if err != nil {
				return nil, errors.Wrapf(err, "field %q", e.Name.Value)
			}
			tuple = append(tuple, value)
		}
		return tuple, nil
	}

	items, ok := v.([]any)
	if !ok {
		return nil, errors.Errorf("expected anonymous tuple %s, got %s", dt, describe(v))
	}
	if len(items) != len(elements) {
		return nil, errors.Errorf("tuple length mismatch: %s has %d elements, got %d", dt, len(elements), len(items))
	}

	tuple := make(ast.Tuple, 0, len(elements))
	for i, e := range elements {
		value, err := castAny(items[i], e.ElementType())
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		tuple = append(tuple, value)
	}

	return tuple, nil
}

func castMap(v any, dt *parser.DataType) (ast.Value, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, mismatch(v, dt)
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := make(ast.Map, 0, len(keys))
	for _, k := range keys {
		var keyInput any = k
		if isNumeric(dt.Map.Key) {
			keyInput = json.Number(k)
		}

		key, err := castAny(keyInput, dt.Map.Key)
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", k)
		}

		value, err := castAny(obj[k], dt.Map.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", k)
		}

		m = append(m, ast.MapEntry{Key: key, Value: value})
	}

	return m, nil
}

func isNumeric(dt *parser.DataType) bool {
	if dt.LowCardinality != nil {
		return isNumeric(dt.LowCardinality.Type)
	}
	if dt.Scalar == nil {
		return dt.Decimal != nil || dt.SizedDecimal != nil
	}

	switch *dt.Scalar {
	case parser.Bool, parser.String, parser.Date, parser.Date32, parser.UUID, parser.IPv4, parser.IPv6, parser.JSON, parser.Nothing:
		return false
	default:
		return true
	}
}

func bitSize(s parser.Scalar) int {
	switch s {
	case parser.UInt8, parser.Int8:
		return 8
	case parser.UInt16, parser.Int16:
		return 16
	case parser.UInt32, parser.Int32:
		return 32
	default:
		return 64
	}
}

func mismatch(v any, dt *parser.DataType) error {
	return errors.Errorf("cannot cast %s to %s", describe(v), dt)
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "value"
	}
}
