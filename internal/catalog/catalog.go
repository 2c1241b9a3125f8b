// Package catalog holds the static, read-only course catalog.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/learnify-backend/internal/domain"
)

//go:embed courses.yaml
var defaultCatalog []byte

type fileFormat struct {
	Courses []courseRecord `yaml:"courses"`
}

type courseRecord struct {
	ID              string   `yaml:"id"`
	Title           string   `yaml:"title"`
	Description     string   `yaml:"description"`
	LongDescription string   `yaml:"long_description"`
	ImageURL        string   `yaml:"image_url"`
	ModuleImagePool []string `yaml:"module_image_pool"`
}

// Catalog is an ordered, immutable set of course base records.
type Catalog struct {
	courses []domain.Course
	byID    map[string]int
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from a YAML file. An empty path returns the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a catalog document. Ids must be present and unique.
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	c := &Catalog{
		courses: make([]domain.Course, 0, len(f.Courses)),
		byID:    make(map[string]int, len(f.Courses)),
	}
	for i, r := range f.Courses {
		if r.ID == "" {
			return nil, fmt.Errorf("catalog: course #%d: %w", i, domain.NewValidationError("id", "required"))
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("catalog: course %q: %w", r.ID, domain.NewValidationError("id", "duplicate"))
		}
		c.byID[r.ID] = len(c.courses)
		c.courses = append(c.courses, domain.Course{
			ID:              r.ID,
			Title:           r.Title,
			Description:     r.Description,
			LongDescription: r.LongDescription,
			ImageURL:        r.ImageURL,
			ModuleImagePool: r.ModuleImagePool,
		})
	}
	return c, nil
}

// New builds a catalog from base records, mostly for tests.
func New(courses ...domain.Course) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(courses))}
	for _, course := range courses {
		course.Modules = nil
		c.byID[course.ID] = len(c.courses)
		c.courses = append(c.courses, course.Clone())
	}
	return c
}

// Get returns a copy of the base record for id.
func (c *Catalog) Get(id string) (domain.Course, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Course{}, false
	}
	return c.courses[i].Clone(), true
}

// List returns copies of all base records in catalog order.
func (c *Catalog) List() []domain.Course {
	out := make([]domain.Course, len(c.courses))
	for i, course := range c.courses {
		out[i] = course.Clone()
	}
	return out
}

// Len is the number of courses.
func (c *Catalog) Len() int { return len(c.courses) }
