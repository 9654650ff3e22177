package crops

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/validation"
)

// DefaultProfileID is the profile used for crops the catalog does not list
const DefaultProfileID = "default"

//go:embed catalog.yaml
var embeddedCatalog []byte

// ErrInvalidCatalog is returned when a catalog file fails validation
var ErrInvalidCatalog = errors.New("invalid crop catalog")

// Config represents the YAML crop catalog
type Config struct {
	Version     string    `yaml:"version"`
	Description string    `yaml:"description"`
	Crops       []Profile `yaml:"crops"`
}

// Profile holds the agronomic tolerances and templates for one crop
type Profile struct {
	ID                string          `yaml:"id"`
	Name              string          `yaml:"name"`
	PHMin             float64         `yaml:"ph_min"`
	PHMax             float64         `yaml:"ph_max"`
	TempMinC          float64         `yaml:"temp_min_c"`
	TempMaxC          float64         `yaml:"temp_max_c"`
	WaterNeed         string          `yaml:"water_need"`
	SeasonDays        int             `yaml:"season_days"`
	NitrogenMinKgHa   float64         `yaml:"nitrogen_min_kg_ha"`
	PhosphorusMinKgHa float64         `yaml:"phosphorus_min_kg_ha"`
	PotassiumMinKgHa  float64         `yaml:"potassium_min_kg_ha"`
	HarvestWindowDays int             `yaml:"harvest_window_days"`
	Stages            []StageTemplate `yaml:"stages"`
	Tasks             []TaskTemplate  `yaml:"tasks"`
}

// StageTemplate is a growth stage in catalog order
type StageTemplate struct {
	Name         string `yaml:"name"`
	DurationDays int    `yaml:"duration_days"`
}

// TaskTemplate is a canonical task, dated relative to the cycle start.
// Empty Seasons or Irrigation lists match every season or irrigation type.
type TaskTemplate struct {
	Title          string                  `yaml:"title"`
	Description    string                  `yaml:"description"`
	TaskType       domain.TaskType         `yaml:"task_type"`
	Priority       domain.Priority         `yaml:"priority"`
	OffsetDays     int                     `yaml:"offset_days"`
	EstimatedHours float64                 `yaml:"estimated_hours"`
	Seasons        []domain.Season         `yaml:"seasons"`
	Irrigation     []domain.IrrigationType `yaml:"irrigation"`
}

// Matches reports whether the template applies to a season and irrigation type
func (t TaskTemplate) Matches(season domain.Season, irrigation domain.IrrigationType) bool {
	if len(t.Seasons) > 0 && season != domain.SeasonYearRound && !containsSeason(t.Seasons, season) {
		return false
	}
	if len(t.Irrigation) > 0 && !containsIrrigation(t.Irrigation, irrigation) {
		return false
	}
	return true
}

// TasksFor returns the templates applicable to a season and irrigation type, in catalog order
func (p *Profile) TasksFor(season domain.Season, irrigation domain.IrrigationType) []TaskTemplate {
	out := make([]TaskTemplate, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		if t.Matches(season, irrigation) {
			out = append(out, t)
		}
	}
	return out
}

// PlannedHarvest returns the expected harvest date for a cycle starting at start
func (p *Profile) PlannedHarvest(start time.Time) time.Time {
	return start.AddDate(0, 0, p.SeasonDays)
}

// PHDistance returns how far ph lies outside the tolerated range, or 0 when inside
func (p *Profile) PHDistance(ph float64) float64 {
	switch {
	case ph < p.PHMin:
		return p.PHMin - ph
	case ph > p.PHMax:
		return ph - p.PHMax
	}
	return 0
}

// Catalog is a read-only lookup of crop profiles
type Catalog struct {
	profiles map[string]*Profile
	fallback *Profile
}

// Default returns the catalog embedded in the binary
func Default() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// Load reads a catalog YAML file; an empty path loads the embedded catalog
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read crop catalog %s: %w", path, err)
	}
	if err := validation.Default().ValidateYAML(data, validation.SchemaCropCatalog); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, path, err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML
func Parse(data []byte) (*Catalog, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	c := &Catalog{profiles: make(map[string]*Profile, len(cfg.Crops))}
	for i := range cfg.Crops {
		p := &cfg.Crops[i]
		c.profiles[strings.ToLower(p.ID)] = p
	}
	c.fallback = c.profiles[DefaultProfileID]
	return c, nil
}

// Validate checks the catalog for errors
func Validate(cfg *Config) error {
	if len(cfg.Crops) == 0 {
		return fmt.Errorf("%w: no crops defined", ErrInvalidCatalog)
	}

	seen := make(map[string]bool, len(cfg.Crops))
	for i, p := range cfg.Crops {
		if p.ID == "" {
			return fmt.Errorf("%w: crop at index %d has empty id", ErrInvalidCatalog, i)
		}
		id := strings.ToLower(p.ID)
		if seen[id] {
			return fmt.Errorf("%w: duplicate crop id '%s'", ErrInvalidCatalog, p.ID)
		}
		seen[id] = true

		if p.PHMin <= 0 || p.PHMax <= p.PHMin {
			return fmt.Errorf("%w: crop '%s' has invalid pH range", ErrInvalidCatalog, p.ID)
		}
		if p.TempMaxC <= p.TempMinC {
			return fmt.Errorf("%w: crop '%s' has invalid temperature range", ErrInvalidCatalog, p.ID)
		}
		if p.SeasonDays <= 0 {
			return fmt.Errorf("%w: crop '%s' needs a positive season_days", ErrInvalidCatalog, p.ID)
		}
		for _, t := range p.Tasks {
			if t.Title == "" {
				return fmt.Errorf("%w: crop '%s' has a task without a title", ErrInvalidCatalog, p.ID)
			}
			if !t.Priority.Valid() {
				return fmt.Errorf("%w: task '%s' of crop '%s' has invalid priority %q", ErrInvalidCatalog, t.Title, p.ID, t.Priority)
			}
		}
	}

	if !seen[DefaultProfileID] {
		return fmt.Errorf("%w: missing '%s' profile", ErrInvalidCatalog, DefaultProfileID)
	}
	return nil
}

// Profile returns the profile for cropID, matching case-insensitively
func (c *Catalog) Profile(cropID string) (*Profile, bool) {
	p, ok := c.profiles[strings.ToLower(strings.TrimSpace(cropID))]
	return p, ok
}

// ProfileOrDefault returns the profile for cropID, falling back to the default profile
func (c *Catalog) ProfileOrDefault(cropID string) *Profile {
	if p, ok := c.Profile(cropID); ok {
		return p
	}
	return c.fallback
}

// IDs returns every crop id in the catalog, the default profile excluded
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.profiles))
	for id := range c.profiles {
		if id != DefaultProfileID {
			ids = append(ids, id)
		}
	}
	return ids
}

func containsSeason(list []domain.Season, s domain.Season) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsIrrigation(list []domain.IrrigationType, t domain.IrrigationType) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}
