// Package document decodes ledger documents into the entity model.
//
// Documents are YAML (JSON is accepted as a YAML subset):
//
//	persons: [Alice, Bob]
//	receipts:
//	  - name: Groceries
//	    paid_by: Alice
//	    items:
//	      - name: bread
//	        cost: 4.5
//	      - name: wine
//	        cost: 30
//	        shared_by: [Alice, Bob]
//
// The decoder checks syntax, field types and required fields. It does not
// check that payers and sharers were declared; the calculator does.
package document

import (
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/splitter/internal/models"
)

// Decoder turns raw document bytes into a ledger.
type Decoder interface {
	Decode(data []byte) (*models.Ledger, error)
}

// ErrInvalidDocument is matched by every *DecodeError.
var ErrInvalidDocument = errors.New("invalid document")

// DecodeError reports where in the document decoding failed.
type DecodeError struct {
	Line   int    // 1-based, 0 when unknown
	Column int    // 1-based, 0 when unknown
	Path   string // e.g. receipts[1].items[0].cost
	Err    error
}

func (e *DecodeError) Error() string {
	msg := e.Err.Error()
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, msg)
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidDocument.
func (e *DecodeError) Is(target error) bool {
	return target == ErrInvalidDocument
}

func errorAt(node *yaml.Node, path string, err error) *DecodeError {
	de := &DecodeError{Path: path, Err: err}
	if node != nil {
		de.Line = node.Line
		de.Column = node.Column
	}
	return de
}

// YAMLDecoder decodes YAML and JSON ledger documents.
type YAMLDecoder struct {
	validate *validatorSet
}

var _ Decoder = (*YAMLDecoder)(nil)

// NewYAMLDecoder creates a decoder with its schema validator.
func NewYAMLDecoder() *YAMLDecoder {
	return &YAMLDecoder{validate: newValidatorSet()}
}

// Decode parses data into a ledger. Persons and receipts keep their
// declaration order. An empty document yields an empty ledger.
func (d *YAMLDecoder) Decode(data []byte) (*models.Ledger, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &DecodeError{Err: err}
	}

	ledger := &models.Ledger{}
	if root.Kind == 0 || len(root.Content) == 0 {
		return ledger, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, errorAt(doc, "", fmt.Errorf("expected a mapping with persons and receipts"))
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]
		switch key.Value {
		case "persons":
			persons, err := d.decodePersons(value)
			if err != nil {
				return nil, err
			}
			ledger.Persons = append(ledger.Persons, persons...)
		case "receipts":
			receipts, err := d.decodeReceipts(value)
			if err != nil {
				return nil, err
			}
			ledger.Receipts = append(ledger.Receipts, receipts...)
		default:
			return nil, errorAt(key, key.Value, fmt.Errorf("unexpected field"))
		}
	}

	seen := make(map[string]bool, len(ledger.Persons))
	for i, p := range ledger.Persons {
		if seen[p.Name] {
			return nil, errorAt(personNode(doc, i), fmt.Sprintf("persons[%d]", i),
				fmt.Errorf("duplicate person %q", p.Name))
		}
		seen[p.Name] = true
	}

	return ledger, nil
}

type personDoc struct {
	Name string `yaml:"name" validate:"required"`
}

type receiptDoc struct {
	Name   string    `yaml:"name" validate:"required"`
	PaidBy string    `yaml:"paid_by" validate:"required"`
	Items  yaml.Node `yaml:"items" validate:"-"`
}

type itemDoc struct {
	Name     string   `yaml:"name" validate:"required"`
	Cost     *float64 `yaml:"cost" validate:"required,gte=0"`
	SharedBy []string `yaml:"shared_by" validate:"dive,required"`
}

func (d *YAMLDecoder) decodePersons(node *yaml.Node) ([]models.Person, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, errorAt(node, "persons", fmt.Errorf("expected a list"))
	}

	persons := make([]models.Person, 0, len(node.Content))
	for i, entry := range node.Content {
		path := fmt.Sprintf("persons[%d]", i)
		var p personDoc
		switch entry.Kind {
		case yaml.ScalarNode:
			if err := checkName(entry, path); err != nil {
				return nil, err
			}
			p.Name = entry.Value
		case yaml.MappingNode:
			if err := checkFields(entry, path, "name"); err != nil {
				return nil, err
			}
			if err := checkNames(entry, path, "name"); err != nil {
				return nil, err
			}
			if err := entry.Decode(&p); err != nil {
				return nil, errorAt(entry, path, err)
			}
		default:
			return nil, errorAt(entry, path, fmt.Errorf("expected a name or a mapping"))
		}
		if err := d.validate.check(entry, path, &p); err != nil {
			return nil, err
		}
		persons = append(persons, models.Person{Name: p.Name})
	}
	return persons, nil
}

func (d *YAMLDecoder) decodeReceipts(node *yaml.Node) ([]models.Receipt, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, errorAt(node, "receipts", fmt.Errorf("expected a list"))
	}

	receipts := make([]models.Receipt, 0, len(node.Content))
	for i, entry := range node.Content {
		path := fmt.Sprintf("receipts[%d]", i)
		if entry.Kind != yaml.MappingNode {
			return nil, errorAt(entry, path, fmt.Errorf("expected a mapping"))
		}
		if err := checkFields(entry, path, "name", "paid_by", "items"); err != nil {
			return nil, err
		}
		if err := checkNames(entry, path, "paid_by"); err != nil {
			return nil, err
		}

		var r receiptDoc
		if err := entry.Decode(&r); err != nil {
			return nil, errorAt(entry, path, err)
		}
		if err := d.validate.check(entry, path, &r); err != nil {
			return nil, err
		}

		items, err := d.decodeItems(&r.Items, path+".items")
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, models.Receipt{Name: r.Name, PaidBy: r.PaidBy, Items: items})
	}
	return receipts, nil
}

func (d *YAMLDecoder) decodeItems(node *yaml.Node, path string) ([]models.Item, error) {
	if node.Kind == 0 || isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, errorAt(node, path, fmt.Errorf("expected a list"))
	}

	items := make([]models.Item, 0, len(node.Content))
	for i, entry := range node.Content {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		if entry.Kind != yaml.MappingNode {
			return nil, errorAt(entry, itemPath, fmt.Errorf("expected a mapping"))
		}
		if err := checkFields(entry, itemPath, "name", "cost", "shared_by"); err != nil {
			return nil, err
		}
		if err := checkNames(entry, itemPath, "shared_by"); err != nil {
			return nil, err
		}

		var it itemDoc
		if err := entry.Decode(&it); err != nil {
			return nil, errorAt(entry, itemPath, err)
		}
		if it.Cost != nil && (math.IsInf(*it.Cost, 0) || math.IsNaN(*it.Cost)) {
			return nil, errorAt(fieldNode(entry, "cost"), itemPath+".cost", fmt.Errorf("must be a finite number"))
		}
		if err := d.validate.check(entry, itemPath, &it); err != nil {
			return nil, err
		}
		items = append(items, models.Item{Name: it.Name, Cost: *it.Cost, SharedBy: it.SharedBy})
	}
	return items, nil
}

// checkFields rejects keys outside allowed.
func checkFields(mapping *yaml.Node, path string, allowed ...string) error {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i]
		known := false
		for _, name := range allowed {
			if key.Value == name {
				known = true
				break
			}
		}
		if !known {
			return errorAt(key, path+"."+key.Value, fmt.Errorf("unexpected field"))
		}
	}
	return nil
}

// checkNames rejects person names under keys of mapping that are not
// strings. A key may hold a single name or a list of names.
func checkNames(mapping *yaml.Node, path string, keys ...string) error {
	for _, key := range keys {
		value := fieldNode(mapping, key)
		if value == nil {
			continue
		}
		if value.Kind != yaml.SequenceNode {
			if err := checkName(value, path+"."+key); err != nil {
				return err
			}
			continue
		}
		for i, entry := range value.Content {
			if err := checkName(entry, fmt.Sprintf("%s.%s[%d]", path, key, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkName accepts string scalars. Nulls pass so that the validator reports
// them as missing.
func checkName(node *yaml.Node, path string) error {
	if node.Kind == yaml.ScalarNode && (node.Tag == "!!str" || node.Tag == "!!null") {
		return nil
	}
	return errorAt(node, path, fmt.Errorf("person name must be a string, got %s", node.Tag))
}

// fieldNode returns the value node of key in mapping, or nil.
func fieldNode(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// personNode locates the i-th person entry across all persons sections.
func personNode(doc *yaml.Node, index int) *yaml.Node {
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "persons" {
			continue
		}
		list := doc.Content[i+1]
		if index < len(list.Content) {
			return list.Content[index]
		}
		index -= len(list.Content)
	}
	return nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}
