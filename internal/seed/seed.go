package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"subbrain/internal/domain"
	"subbrain/internal/domain/models/brain"
	brainSvc "subbrain/internal/domain/services/brain"
)

//go:embed fixtures/*.yaml
var fixtureFiles embed.FS

// Fixture describes a brain to create for one user
type Fixture struct {
	DefaultCollection *CollectionFixture  `yaml:"default_collection"`
	Collections       []CollectionFixture `yaml:"collections"`
	Uncategorized     []ContentFixture    `yaml:"uncategorized"`
}

type CollectionFixture struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	Icon        string              `yaml:"icon"`
	Color       string              `yaml:"color"`
	Content     []ContentFixture    `yaml:"content"`
	Children    []CollectionFixture `yaml:"children"`
}

type ContentFixture struct {
	Title       string   `yaml:"title"`
	Type        string   `yaml:"type"`
	Link        string   `yaml:"link"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// LoadFixture reads an embedded fixture by name (without extension)
func LoadFixture(name string) (*Fixture, error) {
	filename := fmt.Sprintf("fixtures/%s.yaml", name)
	data, err := fixtureFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture YAML
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fixture: %w", err)
	}
	return &f, nil
}

// Summary counts what a seed run created
type Summary struct {
	Collections int
	Content     int
	Skipped     int
}

// Seeder creates fixtures through the services so every invariant applies
type Seeder struct {
	collections brainSvc.CollectionService
	contents    brainSvc.ContentService
	logger      *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(collections brainSvc.CollectionService, contents brainSvc.ContentService, logger *slog.Logger) *Seeder {
	return &Seeder{
		collections: collections,
		contents:    contents,
		logger:      logger,
	}
}

// Seed creates the fixture for userID. Collections whose name already exists
// are reused, so running it twice only adds content.
func (s *Seeder) Seed(ctx context.Context, userID string, f *Fixture) (*Summary, error) {
	sum := &Summary{}

	existing, err := s.collections.ListCollections(ctx, userID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(existing))
	for _, c := range existing {
		byName[c.Name] = c.ID
	}

	if f.DefaultCollection != nil {
		if _, err := s.collection(ctx, userID, *f.DefaultCollection, nil, true, byName, sum); err != nil {
			return nil, err
		}
	}

	for _, cf := range f.Collections {
		if err := s.tree(ctx, userID, cf, nil, byName, sum); err != nil {
			return nil, err
		}
	}

	for _, item := range f.Uncategorized {
		if err := s.content(ctx, userID, item, nil, sum); err != nil {
			return nil, err
		}
	}

	s.logger.Info("seed complete",
		"user_id", userID,
		"collections", sum.Collections,
		"content", sum.Content,
		"skipped", sum.Skipped,
	)
	return sum, nil
}

func (s *Seeder) tree(ctx context.Context, userID string, cf CollectionFixture, parent *string, byName map[string]string, sum *Summary) error {
	id, err := s.collection(ctx, userID, cf, parent, false, byName, sum)
	if err != nil {
		return err
	}
	for _, item := range cf.Content {
		if err := s.content(ctx, userID, item, &id, sum); err != nil {
			return err
		}
	}
	for _, child := range cf.Children {
		if err := s.tree(ctx, userID, child, &id, byName, sum); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) collection(ctx context.Context, userID string, cf CollectionFixture, parent *string, isDefault bool, byName map[string]string, sum *Summary) (string, error) {
	if id, ok := byName[cf.Name]; ok {
		sum.Skipped++
		return id, nil
	}

	c, err := s.collections.CreateCollection(ctx, &brainSvc.CreateCollectionRequest{
		UserID:           userID,
		Name:             cf.Name,
		Description:      cf.Description,
		Icon:             cf.Icon,
		Color:            cf.Color,
		ParentCollection: parent,
		IsDefault:        isDefault,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return "", fmt.Errorf("collection %q: %w", cf.Name, err)
		}
		return "", err
	}

	byName[c.Name] = c.ID
	sum.Collections++
	s.logger.Debug("seeded collection", "id", c.ID, "name", c.Name, "parent_collection", parent)
	return c.ID, nil
}

func (s *Seeder) content(ctx context.Context, userID string, item ContentFixture, collection *string, sum *Summary) error {
	typ := brain.ContentType(item.Type)
	if typ == "" {
		typ = brain.ContentTypeLink
	}

	c, err := s.contents.CreateContent(ctx, &brainSvc.CreateContentRequest{
		UserID:      userID,
		Type:        typ,
		Title:       item.Title,
		Link:        item.Link,
		Description: item.Description,
		Collection:  collection,
		Tags:        item.Tags,
	})
	if err != nil {
		return fmt.Errorf("content %q: %w", item.Title, err)
	}

	sum.Content++
	s.logger.Debug("seeded content", "id", c.ID, "title", c.Title, "collection", collection)
	return nil
}
