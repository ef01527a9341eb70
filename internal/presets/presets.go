// Package presets serves the embedded chart preset gallery.
package presets

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"sync"

	cserrors "github.com/chartsmith/chartsmith/internal/errors"
	"github.com/chartsmith/chartsmith/internal/validation"
	"github.com/chartsmith/chartsmith/pkg/types"
	"gopkg.in/yaml.v3"
)

//go:embed gallery/*.yaml
var galleryFS embed.FS

// Category groups presets in the gallery.
type Category string

// Categories in gallery order.
var Categories = []Category{"area", "bar", "line", "pie", "radar", "radial", "tooltip"}

// Preset is a ready-made chart configuration with sample data.
type Preset struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    Category          `json:"category"`
	Config      types.ChartConfig `json:"config"`
	Dataset     types.Dataset     `json:"dataset"`
}

// Instantiate returns the preset's config and a copy of its dataset, with
// the config id set to id.
func (p Preset) Instantiate(id string) (types.ChartConfig, types.Dataset) {
	cfg := p.Config
	cfg.ID = id
	return cfg, p.Dataset.Clone()
}

type galleryFile struct {
	Presets []struct {
		ID          string      `yaml:"id"`
		Title       string      `yaml:"title"`
		Description string      `yaml:"description"`
		Category    Category    `yaml:"category"`
		Config      interface{} `yaml:"config"`
		Dataset     interface{} `yaml:"dataset"`
	} `yaml:"presets"`
}

var (
	loadOnce sync.Once
	all      []Preset
	byID     map[string]int
	loadErr  error
)

func load() {
	byID = make(map[string]int)
	for _, c := range Categories {
		name := path.Join("gallery", string(c)+".yaml")
		data, err := galleryFS.ReadFile(name)
		if err != nil {
			loadErr = fmt.Errorf("presets: failed to read %s: %w", name, err)
			return
		}
		ps, err := parse(data)
		if err != nil {
			loadErr = fmt.Errorf("presets: %s: %w", name, err)
			return
		}
		for _, p := range ps {
			if _, dup := byID[p.ID]; dup {
				loadErr = fmt.Errorf("presets: duplicate id %q", p.ID)
				return
			}
			byID[p.ID] = len(all)
			all = append(all, p)
		}
	}
}

// parse decodes one gallery file. Config and dataset pass through the same
// validation as API input.
func parse(data []byte) ([]Preset, error) {
	var gf galleryFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, err
	}
	out := make([]Preset, 0, len(gf.Presets))
	for _, raw := range gf.Presets {
		cfgJSON, err := json.Marshal(raw.Config)
		if err != nil {
			return nil, fmt.Errorf("%s: config: %w", raw.ID, err)
		}
		dsJSON, err := json.Marshal(raw.Dataset)
		if err != nil {
			return nil, fmt.Errorf("%s: dataset: %w", raw.ID, err)
		}
		cfg, err := validation.Config(cfgJSON)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", raw.ID, err)
		}
		ds, err := validation.Dataset(dsJSON)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", raw.ID, err)
		}
		out = append(out, Preset{
			ID:          raw.ID,
			Title:       raw.Title,
			Description: raw.Description,
			Category:    raw.Category,
			Config:      cfg,
			Dataset:     ds,
		})
	}
	return out, nil
}

// All returns every preset in gallery order.
func All() ([]Preset, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	return append([]Preset(nil), all...), nil
}

// ByCategory returns the presets of one category.
func ByCategory(c Category) ([]Preset, error) {
	ps, err := All()
	if err != nil {
		return nil, err
	}
	var out []Preset
	for _, p := range ps {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out, nil
}

// Get returns the preset with the given id.
func Get(id string) (Preset, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return Preset{}, loadErr
	}
	i, ok := byID[id]
	if !ok {
		return Preset{}, cserrors.NewNotFoundError(cserrors.CodePresetNotFound, "Preset not found")
	}
	return all[i], nil
}

// IDs returns every preset id, sorted.
func IDs() ([]string, error) {
	ps, err := All()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	sort.Strings(ids)
	return ids, nil
}
