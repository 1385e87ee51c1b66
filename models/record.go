// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Collection is the name of a homogeneous set of business records mirrored
// from the remote document store.
type Collection string

const (
	Sales     Collection = "sales"
	Products  Collection = "products"
	Employees Collection = "employees"
	Clients   Collection = "clients"
)

// TrackedCollections lists every collection kept in the local cache, in the
// order they are pulled during a full sync.
var TrackedCollections = []Collection{
	Products,
	Clients,
	Employees,
	Sales,
}

// Valid reports whether c is one of the tracked collections.
func (c Collection) Valid() bool {
	for _, tracked := range TrackedCollections {
		if c == tracked {
			return true
		}
	}
	return false
}

func (c Collection) String() string {
	return string(c)
}

// Record is a single business document (sale, product, employee, client).
// Every record belongs to exactly one business.
type Record struct {
	// ID is the document identifier, unique within its collection.
	ID string `json:"id" yaml:"id"`

	// BusinessID is the owning business.
	BusinessID string `json:"business_id" yaml:"business_id"`

	// Fields holds the typed payload of the document.
	Fields Fields `json:"fields,omitempty" yaml:"fields,omitempty"`

	// CreatedAt is the creation timestamp of the document.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Fields is the arbitrary payload of a [Record]. It is persisted as a JSON
// object.
type Fields map[string]any

// Merge returns a copy of f with every key of patch written over it.
// Neither f nor patch is modified.
func (f Fields) Merge(patch Fields) Fields {
	merged := make(Fields, len(f)+len(patch))
	for k, v := range f {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}

// Value implements [driver.Valuer].
func (f Fields) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	return string(b), nil
}

// Scan implements [sql.Scanner].
func (f *Fields) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*f = Fields{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported fields source type %T", src)
	}

	out := Fields{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("unmarshal fields: %w", err)
	}
	*f = out
	return nil
}
