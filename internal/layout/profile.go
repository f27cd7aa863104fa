package layout

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/regpatch/internal/format"
)

// Profile is the YAML form of a layout table. Offsets may be written in hex
// (0x2A0000) or decimal.
type Profile struct {
	GameVersion string          `yaml:"game_version,omitempty"`
	Records     []ProfileRecord `yaml:"records"`
}

// ProfileRecord is the YAML form of a Record.
type ProfileRecord struct {
	Name       string         `yaml:"name"`
	BaseOffset int            `yaml:"base_offset"`
	Stride     int            `yaml:"stride"`
	Index      int            `yaml:"index"`
	Fields     []ProfileField `yaml:"fields"`
}

// ProfileField is the YAML form of a Field.
type ProfileField struct {
	Name   string `yaml:"name"`
	Offset int    `yaml:"offset"`
	Type   string `yaml:"type"`
}

// ParseProfile decodes a YAML profile and builds a validated table.
func ParseProfile(data []byte) (*Table, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("layout: parsing profile: %w", err)
	}
	if len(p.Records) == 0 {
		return nil, fmt.Errorf("layout: profile declares no records")
	}

	records := make([]Record, 0, len(p.Records))
	for _, pr := range p.Records {
		r := Record{
			Name:       pr.Name,
			BaseOffset: pr.BaseOffset,
			Stride:     pr.Stride,
			Index:      pr.Index,
			Fields:     make([]Field, 0, len(pr.Fields)),
		}
		for _, pf := range pr.Fields {
			ft, err := format.ParseFieldType(pf.Type)
			if err != nil {
				return nil, fmt.Errorf("layout: %s.%s: %w", pr.Name, pf.Name, err)
			}
			r.Fields = append(r.Fields, Field{Name: pf.Name, Offset: pf.Offset, Type: ft})
		}
		records = append(records, r)
	}
	return NewTable(records...)
}

// LoadProfile reads a YAML profile from path.
func LoadProfile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &format.IOError{Op: "read profile", Path: path, Err: err}
	}
	t, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Profile converts the table back to its YAML form.
func (t *Table) Profile() Profile {
	p := Profile{Records: make([]ProfileRecord, 0, len(t.records))}
	for _, r := range t.records {
		pr := ProfileRecord{
			Name:       r.Name,
			BaseOffset: r.BaseOffset,
			Stride:     r.Stride,
			Index:      r.Index,
			Fields:     make([]ProfileField, 0, len(r.Fields)),
		}
		for _, f := range r.Fields {
			pr.Fields = append(pr.Fields, ProfileField{Name: f.Name, Offset: f.Offset, Type: f.Type.String()})
		}
		p.Records = append(p.Records, pr)
	}
	return p
}

// MarshalProfile encodes the table as YAML.
func (t *Table) MarshalProfile() ([]byte, error) {
	return yaml.Marshal(t.Profile())
}
