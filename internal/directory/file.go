package directory

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileDoctor struct {
	ID         string `yaml:"id"`
	UserID     string `yaml:"userId"`
	Department string `yaml:"department"`
	Approved   bool   `yaml:"approved"`
}

type fileContents struct {
	Doctors []fileDoctor `yaml:"doctors"`
}

// FileDirectory serves a fixed set of doctors, typically loaded from a YAML
// file when the service runs with in-memory storage.
type FileDirectory struct {
	byID   map[string]Entry
	byUser map[string]string
}

// NewFileDirectory builds a directory from the given entries.
func NewFileDirectory(entries ...Entry) *FileDirectory {
	d := &FileDirectory{
		byID:   make(map[string]Entry, len(entries)),
		byUser: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		d.byID[e.DoctorID] = e
		if e.UserID != "" {
			d.byUser[e.UserID] = e.DoctorID
		}
	}
	return d
}

// LoadFile reads a YAML document of the form
//
//	doctors:
//	  - id: 3f1c...
//	    userId: 9a2e...
//	    department: Cardiology
//	    approved: true
func LoadFile(path string) (*FileDirectory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory file: %w", err)
	}
	return parseFile(raw)
}

func parseFile(raw []byte) (*FileDirectory, error) {
	var contents fileContents
	if err := yaml.Unmarshal(raw, &contents); err != nil {
		return nil, fmt.Errorf("parse directory file: %w", err)
	}
	entries := make([]Entry, 0, len(contents.Doctors))
	for i, doc := range contents.Doctors {
		if doc.ID == "" {
			return nil, fmt.Errorf("parse directory file: doctor %d has no id", i)
		}
		entries = append(entries, Entry{DoctorID: doc.ID, UserID: doc.UserID, IsApproved: doc.Approved})
	}
	return NewFileDirectory(entries...), nil
}

func (d *FileDirectory) Lookup(_ context.Context, doctorID string) (Entry, error) {
	e, ok := d.byID[doctorID]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (d *FileDirectory) DoctorIDForUser(_ context.Context, userID string) (string, error) {
	id, ok := d.byUser[userID]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}
