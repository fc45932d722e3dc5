package seed

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yml
var presetFS embed.FS

// Preset is a hand-written seed fixture. Posts are created as listed;
// prompts are drawn at random for generated comments.
type Preset struct {
	Name    string       `yaml:"name"`
	Posts   []PresetPost `yaml:"posts"`
	Prompts []string     `yaml:"prompts"`
}

type PresetPost struct {
	Title    string `yaml:"title"`
	ImageURL string `yaml:"image_url"`
	UserID   uint   `yaml:"user_id"`
}

// ParsePreset decodes and validates a YAML preset.
func ParsePreset(data []byte) (*Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode preset: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPreset reads a preset from disk. The name "default" selects the built-in one.
func LoadPreset(path string) (*Preset, error) {
	if path == "" || path == "default" {
		return DefaultPreset()
	}
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset %s: %w", path, err)
	}
	return ParsePreset(raw)
}

func DefaultPreset() (*Preset, error) {
	raw, err := presetFS.ReadFile("presets/default.yml")
	if err != nil {
		return nil, err
	}
	return ParsePreset(raw)
}

func (p *Preset) validate() error {
	for i, post := range p.Posts {
		if strings.TrimSpace(post.Title) == "" {
			return fmt.Errorf("preset post %d: title is required", i)
		}
		u, err := url.Parse(post.ImageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("preset post %d: image_url must be an absolute http(s) URL", i)
		}
	}
	for _, prompt := range p.Prompts {
		if strings.TrimSpace(prompt) == "" {
			return errors.New("preset prompts must not be empty")
		}
	}
	return nil
}
