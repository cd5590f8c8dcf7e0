package sensitive

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownAttribute = errors.New("unknown player attribute")
	ErrInvalidValue     = errors.New("invalid attribute value")
)

// Record is the wire representation of a player: attribute name to value,
// every sensitive attribute in plaintext.
type Record map[string]any

// Row is the storage representation of a player: column name to raw value
// as returned by the database driver.
type Row map[string]any

// ToWire decodes a stored row for presentation. Every sensitive attribute is
// present in the result; a missing or NULL column decodes to "". Plaintext
// columns are copied unchanged when present. Columns outside the player
// schema are dropped.
func ToWire(row Row) Record {
	rec := make(Record, len(Columns)+len(PlainColumns))
	for _, c := range PlainColumns {
		if v, ok := row[c.Column]; ok {
			rec[c.Attribute] = v
		}
	}
	for _, c := range Columns {
		rec[c.Attribute] = Decode(row[c.Column])
	}
	return rec
}

// ToStorage encodes a wire record for persistence. Only attributes present
// in rec are written, so a partial record never clears other columns. A nil
// sensitive value clears its column.
func ToStorage(rec Record) (Row, error) {
	row := make(Row, len(rec))
	for attr, v := range rec {
		if col, ok := ColumnFor(attr); ok {
			enc, err := encodeValue(attr, v)
			if err != nil {
				return nil, err
			}
			row[col] = enc
			continue
		}
		if c, ok := PlainColumnFor(attr); ok {
			if err := checkScalar(attr, v); err != nil {
				return nil, err
			}
			row[c.Column] = v
			continue
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, attr)
	}
	return row, nil
}

// EncodeField encodes a single sensitive attribute and returns the column it
// belongs in.
func EncodeField(attribute, plaintext string) (string, []byte, error) {
	col, ok := ColumnFor(attribute)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, attribute)
	}
	return col, Encode(plaintext), nil
}

// DecodeField decodes a single sensitive attribute from a stored row.
func DecodeField(row Row, attribute string) (string, error) {
	col, ok := ColumnFor(attribute)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAttribute, attribute)
	}
	return Decode(row[col]), nil
}

func encodeValue(attr string, v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return Encode(val), nil
	case *string:
		if val == nil {
			return nil, nil
		}
		return Encode(*val), nil
	default:
		return nil, fmt.Errorf("%w: %q has type %T", ErrInvalidValue, attr, v)
	}
}

// checkScalar admits only values a SQL driver can bind to a plaintext column.
func checkScalar(attr string, v any) error {
	switch v.(type) {
	case nil, string, bool, json.Number, time.Time,
		float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return nil
	default:
		return fmt.Errorf("%w: %q has type %T", ErrInvalidValue, attr, v)
	}
}
