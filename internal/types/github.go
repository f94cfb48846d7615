package types

import "strings"

// FieldType is a GitHub Projects v2 field data type.
type FieldType string

const (
	FieldText         FieldType = "TEXT"
	FieldNumber       FieldType = "NUMBER"
	FieldDate         FieldType = "DATE"
	FieldSingleSelect FieldType = "SINGLE_SELECT"
	FieldIteration    FieldType = "ITERATION"
)

// Project is a GitHub Projects v2 board.
type Project struct {
	ID          string `json:"id"`
	Number      int    `json:"number"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// ProjectItem is one item on a project board. ContentID is the underlying
// draft issue or repository issue node; FieldValues carry the custom field
// text values keyed by field name.
type ProjectItem struct {
	ID          string            `json:"id"`
	ContentID   string            `json:"contentId,omitempty"`
	Title       string            `json:"title"`
	Body        string            `json:"body,omitempty"`
	IsDraft     bool              `json:"isDraft"`
	FieldValues map[string]string `json:"fieldValues,omitempty"`
}

// Field is a project custom field.
type Field struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	DataType FieldType     `json:"dataType"`
	Options  []FieldOption `json:"options,omitempty"`
}

// FieldOption is one choice of a single-select field.
type FieldOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// OptionByName returns the option with the given name, case-insensitively.
func (f *Field) OptionByName(name string) (FieldOption, bool) {
	for _, opt := range f.Options {
		if strings.EqualFold(opt.Name, name) {
			return opt, true
		}
	}
	return FieldOption{}, false
}
