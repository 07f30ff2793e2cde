// Package models holds the client-side domain types and their record form as
// exchanged with the persistence backend.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/kidkeeper/internal/common"
)

// Record is the generic JSON object form of a domain value.
type Record = map[string]any

// Kind names a record type; records are partitioned by family code and kind.
type Kind string

const (
	KindDiary  Kind = "diary"
	KindLesson Kind = "lesson"
	KindGift   Kind = "gift"
	KindTask   Kind = "task"
	KindPoints Kind = "points"
)

// StoredRecord is a row as persisted by a records repository. Payload is the
// JSON-encoded Record; its protected fields carry ciphertext.
type StoredRecord struct {
	ID         string
	FamilyCode string
	Kind       Kind
	Payload    []byte
	CreatedAt  int64 // unix nanoseconds
	Deleted    bool
}

// EncodePayload serializes r for storage.
func EncodePayload(r Record) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorIncorrectPayload, err)
	}
	return b, nil
}

// DecodePayload parses a stored payload. Numbers are kept as json.Number so
// integer fields survive without float rounding.
func DecodePayload(b []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var r Record
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorIncorrectPayload, err)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: payload is not an object", common.ErrorIncorrectPayload)
	}
	return r, nil
}

func stringField(r Record, key string) string {
	s, _ := r[key].(string)
	return s
}

func intField(r Record, key string) (int64, error) {
	switch v := r[key].(type) {
	case nil:
		return 0, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: field %s: %w", common.ErrorIncorrectPayload, key, err)
		}
		return n, nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: field %s: %w", common.ErrorIncorrectPayload, key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: field %s has type %T", common.ErrorIncorrectPayload, key, v)
	}
}
