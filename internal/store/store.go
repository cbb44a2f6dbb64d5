// Package store holds the document store adapters. Documents are addressed by
// collection name and string ID, and decoded into caller-provided values.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrInvalidField  = errors.New("invalid field name")
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Store is the document store used by the repository layer.
type Store interface {
	// Insert stores doc under a generated ID and returns it.
	Insert(ctx context.Context, collection string, doc any) (string, error)
	// Set creates or replaces the document stored under id.
	Set(ctx context.Context, collection, id string, doc any) error
	// QueryWhere decodes every document whose field equals value into out (pointer to slice).
	QueryWhere(ctx context.Context, collection, field string, value any, out any) error
	// ListAll decodes the whole collection ordered by orderBy into out (pointer to slice).
	ListAll(ctx context.Context, collection, orderBy string, dir Direction, out any) error
	// GetByID decodes one document into out or returns ErrNotFound.
	GetByID(ctx context.Context, collection, id string, out any) error
	Close(ctx context.Context) error
}

// encodeDocument marshals doc to a JSON object carrying the given id.
func encodeDocument(id string, doc any) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("document is not an object: %w", err)
	}
	fields["id"] = id
	return json.Marshal(fields)
}

// decodeList unmarshals a list of JSON documents into out as one array.
func decodeList(docs [][]byte, out any) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, d := range docs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(d)
	}
	buf.WriteByte(']')
	if err := json.Unmarshal(buf.Bytes(), out); err != nil {
		return fmt.Errorf("decode documents: %w", err)
	}
	return nil
}

// validField guards field names that end up inside queries.
func validField(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
