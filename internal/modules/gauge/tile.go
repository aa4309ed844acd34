package gauge

// Tile is the render-ready description of one gauge
type Tile struct {
	Value        *float64 `json:"value"`
	Key          string   `json:"key"`
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle,omitempty"`
	HelpURL      string   `json:"helpUrl,omitempty"`
	DisplayValue string   `json:"displayValue"`
	AsOf         string   `json:"asOf"`
	Zone         string   `json:"zone,omitempty"`
	Thresholds   []string `json:"thresholds,omitempty"`
	Angle        float64  `json:"angle"`
	Neutral      bool     `json:"neutral"` // no reading yet: grey arc, no needle
	Editable     bool     `json:"editable"`
}

// BuildTile describes the tile for cfg showing value. A nil value yields a
// neutral tile with the needle centred.
func BuildTile(cfg MetricConfig, value *float64, asOf string) Tile {
	t := Tile{
		Key:        cfg.Key,
		Title:      cfg.Title,
		Subtitle:   cfg.Subtitle,
		HelpURL:    cfg.HelpURL,
		Thresholds: cfg.Thresholds,
		AsOf:       asOf,
		Editable:   cfg.Manual,
	}
	if t.AsOf == "" {
		t.AsOf = "—"
	}

	if value == nil {
		t.Neutral = true
		t.DisplayValue = cfg.FormatValue(0)
		return t
	}

	v := *value
	t.Value = &v
	t.DisplayValue = cfg.FormatValue(v)
	t.Angle = AngleFor(v, cfg.Bands, 0)
	if i := Zone(v, cfg.Bands); i >= 0 {
		t.Zone = cfg.Bands[i].Zone
	}
	return t
}
