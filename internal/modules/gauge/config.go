package gauge

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed metrics.yaml
var defaultMetricsYAML []byte

// Display formats for a metric's value bubble
const (
	FormatPercent = "percent" // ratio shown as a whole percentage
	FormatFixed1  = "fixed1"
	FormatFixed2  = "fixed2"
)

// MetricConfig describes one gauge tile. Configs are loaded once and never mutated.
type MetricConfig struct {
	Key        string   `yaml:"key" json:"key"`
	Title      string   `yaml:"title" json:"title"`
	Subtitle   string   `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	HelpURL    string   `yaml:"helpUrl,omitempty" json:"helpUrl,omitempty"`
	Format     string   `yaml:"format" json:"format"`
	Bands      []Band   `yaml:"bands" json:"bands"`
	Thresholds []string `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
	Manual     bool     `yaml:"manual,omitempty" json:"manual,omitempty"` // value entered by the user, not fetched
}

// FormatValue renders value the way the tile's bubble shows it
func (c MetricConfig) FormatValue(value float64) string {
	switch c.Format {
	case FormatPercent:
		return fmt.Sprintf("%d%%", int64(math.Round(value*100)))
	case FormatFixed1:
		return fmt.Sprintf("%.1f", value)
	default:
		return fmt.Sprintf("%.2f", value)
	}
}

// Catalog is the ordered, validated set of metric configs
type Catalog struct {
	metrics []MetricConfig
	byKey   map[string]int
}

type catalogFile struct {
	Metrics []MetricConfig `yaml:"metrics"`
}

// DefaultCatalog returns the built-in metric scales
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultMetricsYAML)
}

// LoadCatalog reads metric scales from path, or the built-in ones when path is empty
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics config %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML metrics document
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse metrics config: %w", err)
	}
	if len(file.Metrics) == 0 {
		return nil, fmt.Errorf("metrics config defines no metrics")
	}

	c := &Catalog{
		metrics: make([]MetricConfig, 0, len(file.Metrics)),
		byKey:   make(map[string]int, len(file.Metrics)),
	}
	for _, m := range file.Metrics {
		m.Key = strings.TrimSpace(m.Key)
		if m.Key == "" {
			return nil, fmt.Errorf("metric without key")
		}
		if _, dup := c.byKey[m.Key]; dup {
			return nil, fmt.Errorf("duplicate metric %q", m.Key)
		}
		switch m.Format {
		case "":
			m.Format = FormatFixed2
		case FormatPercent, FormatFixed1, FormatFixed2:
		default:
			return nil, fmt.Errorf("metric %s: unknown format %q", m.Key, m.Format)
		}
		if err := ValidateBands(m.Bands); err != nil {
			return nil, fmt.Errorf("metric %s: %w", m.Key, err)
		}
		c.byKey[m.Key] = len(c.metrics)
		c.metrics = append(c.metrics, m)
	}

	return c, nil
}

// Metrics returns the configs in display order
func (c *Catalog) Metrics() []MetricConfig {
	out := make([]MetricConfig, len(c.metrics))
	copy(out, c.metrics)
	return out
}

// Lookup returns the config for key
func (c *Catalog) Lookup(key string) (MetricConfig, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return MetricConfig{}, false
	}
	return c.metrics[i], true
}
