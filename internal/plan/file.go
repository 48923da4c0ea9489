package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

type fileComparator struct {
	A      string  `toml:"a"`
	B      string  `toml:"b"`
	Kind   Kind    `toml:"kind"`
	Cutoff float64 `toml:"cutoff,omitempty"`
}

type fileTier struct {
	Confidence  int              `toml:"confidence"`
	Comparisons int              `toml:"comparisons,omitempty"`
	Compare     []fileComparator `toml:"compare"`
}

type fileLayout struct {
	Tiers []fileTier `toml:"tier"`
}

// Decode reads a TOML plan and validates it. A tier that omits comparisons
// declares exactly the comparators it lists; a tier that omits confidence gets
// the next level after the previous tier.
func Decode(r io.Reader) (*Plan, error) {
	var layout fileLayout
	decoder := toml.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&layout); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: parse plan: %s", ErrConfiguration, strict.String())
		}
		return nil, fmt.Errorf("%w: parse plan: %w", ErrConfiguration, err)
	}

	p := &Plan{Tiers: make([]Tier, len(layout.Tiers))}
	prev := 0
	for i, ft := range layout.Tiers {
		confidence := ft.Confidence
		if confidence == 0 {
			confidence = prev + 1
		}
		prev = confidence
		comparisons := ft.Comparisons
		if comparisons == 0 {
			comparisons = len(ft.Compare)
		}
		comps := make([]Comparator, len(ft.Compare))
		for j, fc := range ft.Compare {
			comps[j] = Comparator{ColumnA: fc.A, ColumnB: fc.B, Kind: fc.Kind, Cutoff: fc.Cutoff}
		}
		p.Tiers[i] = Tier{Confidence: confidence, Comparisons: comparisons, Comparators: comps}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads and validates the plan file at path.
func Load(path string) (*Plan, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan: %w", err)
	}
	defer file.Close()
	p, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// Encode writes p as TOML. Unfilled slots are written with empty column names
// so the file can serve as a template.
func Encode(w io.Writer, p *Plan) error {
	layout := fileLayout{Tiers: make([]fileTier, p.Len())}
	for i, t := range p.Tiers {
		ft := fileTier{Confidence: t.Confidence, Comparisons: t.Comparisons}
		for _, c := range t.Comparators {
			fc := fileComparator{A: c.ColumnA, B: c.ColumnB, Kind: c.Kind}
			if c.Kind == Approximate {
				fc.Cutoff = c.Cutoff
			}
			ft.Compare = append(ft.Compare, fc)
		}
		layout.Tiers[i] = ft
	}
	encoder := toml.NewEncoder(w)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(layout); err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	return nil
}

// Skeleton renders Build(counts, confidenceOffset) as TOML.
func Skeleton(counts []int, confidenceOffset int) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, Build(counts, confidenceOffset)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes p to path, creating parent directories.
func WriteFile(path string, p *Plan) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create plan directory: %w", err)
		}
	}
	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}
