// Package policyfile loads per-device transport policy tables from a JSON
// document. Documents are validated twice, once against the embedded JSON
// schema and once by the typed validators, so a document accepted here is
// guaranteed loadable by every consumer.
package policyfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lynxaudio/audiogate/api/audio"
)

//go:embed policy.schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("policy.schema.json", schemaJSON)

// Entry binds one device to its policy.
type Entry struct {
	Device string `json:"device"`
	Policy string `json:"policy"`
}

// Tables holds the per-kind policy tables. A missing table means the
// document imposes nothing for that kind and the resolver's compiled
// default applies.
type Tables struct {
	Default   []Entry `json:"default,omitempty"`
	Exclusive []Entry `json:"exclusive,omitempty"`
}

// Document is the on-disk policy format.
type Document struct {
	Version  int    `json:"version"`
	Policies Tables `json:"policies"`
}

// Validate applies the typed rules the schema cannot express alone.
func (d Document) Validate() error {
	if d.Version != 1 {
		return fmt.Errorf("unsupported policy document version %d", d.Version)
	}
	for kind, table := range map[string][]Entry{
		"default":   d.Policies.Default,
		"exclusive": d.Policies.Exclusive,
	} {
		seen := make(map[string]struct{}, len(table))
		for i, entry := range table {
			if entry.Device == "" {
				return fmt.Errorf("%s[%d]: device must not be empty", kind, i)
			}
			if _, dup := seen[entry.Device]; dup {
				return fmt.Errorf("%s[%d]: duplicate device %q", kind, i, entry.Device)
			}
			seen[entry.Device] = struct{}{}
			if err := audio.TransportPolicy(entry.Policy).Validate(); err != nil {
				return fmt.Errorf("%s[%d]: %w", kind, i, err)
			}
		}
	}
	return nil
}

// Parse decodes and validates a policy document.
func Parse(raw []byte) (Document, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Document{}, fmt.Errorf("decode policy document: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return Document{}, fmt.Errorf("policy document schema: %w", err)
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode policy document: %w", err)
	}
	if err := dec.Decode(new(any)); err != io.EOF {
		return Document{}, fmt.Errorf("unexpected trailing JSON payload")
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Load reads and parses the policy document at path.
func Load(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read policy document: %w", err)
	}
	doc, err := Parse(raw)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Provider answers policy queries from a loaded document.
type Provider struct {
	doc Document
}

// NewProvider wraps a validated document.
func NewProvider(doc Document) *Provider {
	return &Provider{doc: doc}
}

// QueryPolicyInfo returns the table for the given kind. A nil table is a
// valid answer: the resolver treats it as no constraint.
func (p *Provider) QueryPolicyInfo(kind audio.PolicyKind) ([]audio.PolicyInfo, error) {
	var table []Entry
	switch kind {
	case audio.PolicyKindExclusive:
		table = p.doc.Policies.Exclusive
	case audio.PolicyKindDefault:
		table = p.doc.Policies.Default
	default:
		return nil, fmt.Errorf("unknown policy kind %q", kind)
	}
	infos := make([]audio.PolicyInfo, 0, len(table))
	for _, entry := range table {
		infos = append(infos, audio.PolicyInfo{
			Device: entry.Device,
			Policy: audio.TransportPolicy(entry.Policy),
		})
	}
	return infos, nil
}
