// Package persistence converts budget documents to and from the versioned
// .ffe file format and reads and writes those files.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ffebudget/budget"
)

// Version is the schema version written by Serialize.
const Version = "1.0"

// Extension is the file extension used for saved documents.
const Extension = ".ffe"

var (
	ErrMissingProjectInfo = errors.New("document has no projectInfo")
	ErrMissingCategories  = errors.New("document has no categories")
	ErrMalformed          = errors.New("document is malformed")
)

// DocumentFile is the on-disk shape of a document.
type DocumentFile struct {
	Version     string             `json:"version"`
	SavedAt     time.Time          `json:"savedAt"`
	ProjectInfo budget.ProjectInfo `json:"projectInfo"`
	Categories  []budget.Category  `json:"categories"`
}

// NewDocumentFile builds the file record for doc. Every category and item is
// carried in order; missing slices and specifications are written as empty
// values so a reload compares equal.
func NewDocumentFile(doc budget.Document, now time.Time) DocumentFile {
	doc = doc.Clone()
	f := DocumentFile{
		Version:     Version,
		SavedAt:     now.UTC(),
		ProjectInfo: doc.ProjectInfo,
		Categories:  doc.Categories,
	}
	if f.ProjectInfo.Terms == nil {
		f.ProjectInfo.Terms = []string{}
	}
	if f.Categories == nil {
		f.Categories = []budget.Category{}
	}
	for i := range f.Categories {
		c := &f.Categories[i]
		c.IconKey = ""
		if c.Items == nil {
			c.Items = []budget.LineItem{}
		}
		for j := range c.Items {
			it := &c.Items[j]
			if it.Specification == nil {
				it.Specification = budget.EmptySpecification()
			}
			if it.Specification.Attachments == nil {
				it.Specification.Attachments = []budget.Attachment{}
			}
		}
	}
	return f
}

// Serialize encodes doc as an indented .ffe document stamped with now.
func Serialize(doc budget.Document, now time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(NewDocumentFile(doc, now), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// IsRecoverable reports whether a recovery snapshot holds work worth
// offering back: some category has more than one item, or a first item
// with a description.
func IsRecoverable(doc budget.Document) bool {
	for _, c := range doc.Categories {
		if len(c.Items) > 1 {
			return true
		}
		if len(c.Items) == 1 && c.Items[0].Description != "" {
			return true
		}
	}
	return false
}
