package registry

import (
	apperrors "dashcsv/internal/errors"
	"dashcsv/internal/files"
)

// Record is the "result" object of one registry publisher file
type Record struct {
	ID     string
	fields *files.Object
}

// NewRecord wraps the fields of a registry record
func NewRecord(id string, fields *files.Object) Record {
	if fields == nil {
		fields = files.NewObject()
	}
	return Record{ID: id, fields: fields}
}

// Field returns a registry field and whether the record carries it
func (r Record) Field(name string) (files.Value, bool) {
	return r.fields.Get(name)
}

// Title returns the publisher title. A record without a title field is a
// MissingKey error; a null title reads as empty.
func (r Record) Title() (string, error) {
	v, ok := r.fields.Get("title")
	if !ok {
		return "", apperrors.NewMissingKeyError(StoreName+"/"+r.ID, "title")
	}
	return v.Text(), nil
}
