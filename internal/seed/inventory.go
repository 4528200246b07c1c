// Package seed loads inventory catalogs and generates demo data for
// development databases.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"toolshed/internal/models"
	"toolshed/internal/repository"

	"gopkg.in/yaml.v3"
)

// InventoryFile is the YAML layout of an inventory catalog:
//
//	items:
//	  - code: HAM-001
//	    name: Claw hammer
//	    location: Shed A
type InventoryFile struct {
	Items []models.InventoryItem `yaml:"items"`
}

// ParseInventory decodes and validates a catalog. Codes are trimmed and must be
// present and unique within the file.
func ParseInventory(r io.Reader) ([]models.InventoryItem, error) {
	var file InventoryFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode inventory: %w", err)
	}

	seen := make(map[string]int, len(file.Items))
	items := make([]models.InventoryItem, 0, len(file.Items))
	for i, item := range file.Items {
		item.Code = strings.TrimSpace(item.Code)
		item.Name = strings.TrimSpace(item.Name)
		if item.Code == "" {
			return nil, fmt.Errorf("item %d: code is required", i+1)
		}
		if item.Name == "" {
			item.Name = item.Code
		}
		if prev, dup := seen[item.Code]; dup {
			return nil, fmt.Errorf("item %d: code %s already used by item %d", i+1, item.Code, prev)
		}
		seen[item.Code] = i + 1
		items = append(items, item)
	}
	return items, nil
}

// LoadInventoryFile parses the catalog at path.
func LoadInventoryFile(path string) ([]models.InventoryItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inventory file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseInventory(f)
}

// Inventory upserts items by code. Running it twice with the same catalog is a no-op
// apart from updated_at.
func Inventory(ctx context.Context, repo repository.InventoryRepository, items []models.InventoryItem) error {
	if err := repo.Upsert(ctx, items); err != nil {
		return fmt.Errorf("seed inventory: %w", err)
	}
	return nil
}
