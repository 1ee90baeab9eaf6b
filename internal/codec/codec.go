package codec

import (
	"io"
	"path/filepath"
	"strings"

	"hackmaster/internal/domain"
)

// Document is a decoded facts file or request body
type Document struct {
	// OutputFilename is only set when the input used the
	// {output_filename, info_data} envelope
	OutputFilename string
	Facts          domain.Facts
}

// Importer interface for reading facts from various formats
type Importer interface {
	Parse(r io.Reader) (*Document, error)
	Format() string
}

// Exporter interface for writing facts to various formats
type Exporter interface {
	Export(facts domain.Facts, w io.Writer) error
	Format() string
}

// ForPath picks a codec from a file extension, defaulting to JSON
func ForPath(path string) Importer {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYAMLCodec()
	default:
		return NewJSONCodec()
	}
}

// ForFormat returns the exporter for a format name, or nil if unknown
func ForFormat(format string) Exporter {
	switch strings.ToLower(format) {
	case "", "json":
		return NewJSONCodec()
	case "yaml", "yml":
		return NewYAMLCodec()
	default:
		return nil
	}
}

// factsDoc mirrors the wire keys the dashboard form posts
type factsDoc struct {
	Date []string     `json:"date,omitempty" yaml:"date,omitempty"`
	Tel  []string     `json:"tel,omitempty" yaml:"tel,omitempty"`
	Name []string     `json:"name,omitempty" yaml:"name,omitempty"`
	ID   []string     `json:"ID,omitempty" yaml:"ID,omitempty"`
	SSID stringOrList `json:"SSID,omitempty" yaml:"SSID,omitempty"`
}

// document accepts both bare facts and the info_data envelope
type document struct {
	OutputFilename string    `json:"output_filename,omitempty" yaml:"output_filename,omitempty"`
	InfoData       *factsDoc `json:"info_data,omitempty" yaml:"info_data,omitempty"`
	factsDoc       `yaml:",inline"`
}

func (d *document) toDocument() *Document {
	src := d.factsDoc
	if d.InfoData != nil {
		src = *d.InfoData
	}
	return &Document{
		OutputFilename: d.OutputFilename,
		Facts:          src.toDomain(),
	}
}

func (f factsDoc) toDomain() domain.Facts {
	facts := domain.Facts{
		Dates:  f.Date,
		Phones: f.Tel,
		Names:  f.Name,
		IDs:    f.ID,
	}
	if len(f.SSID) > 0 {
		facts.NetworkName = f.SSID[0]
	}
	return facts
}

func fromDomain(facts domain.Facts) factsDoc {
	doc := factsDoc{
		Date: facts.Dates,
		Tel:  facts.Phones,
		Name: facts.Names,
		ID:   facts.IDs,
	}
	if facts.NetworkName != "" {
		doc.SSID = stringOrList{facts.NetworkName}
	}
	return doc
}
