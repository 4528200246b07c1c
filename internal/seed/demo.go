package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"toolshed/internal/models"
	"toolshed/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls demo data generation.
type Options struct {
	Users    int
	Tools    int
	Requests int
	// Seed makes generation deterministic when non-zero.
	Seed int64
}

// Summary reports what a demo run created.
type Summary struct {
	Users    int
	Tools    int
	Requests int
}

var toolKinds = []struct {
	prefix string
	name   string
}{
	{"HAM", "Hammer"},
	{"DRL", "Drill"},
	{"SAW", "Saw"},
	{"LAD", "Ladder"},
	{"WRN", "Wrench"},
	{"SND", "Sander"},
	{"CLP", "Clamp"},
	{"LVL", "Spirit level"},
}

var locations = []string{"Shed A", "Shed B", "Workshop", "Garage", "Basement"}

// Factory builds demo entities with gofakeit.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory returns a factory. A zero seed picks a random one.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// BuildUser returns an unsaved user with a unique-looking username.
func (f *Factory) BuildUser(n int) models.User {
	return models.User{
		Username: fmt.Sprintf("%s%d", strings.ToLower(f.faker.Username()), n),
		Email:    f.faker.Email(),
	}
}

// BuildInventoryItem returns the n-th demo tool. Codes are unique per n.
func (f *Factory) BuildInventoryItem(n int) models.InventoryItem {
	kind := toolKinds[n%len(toolKinds)]
	return models.InventoryItem{
		Code:        fmt.Sprintf("%s-%03d", kind.prefix, n+1),
		Name:        fmt.Sprintf("%s %s", f.faker.Color(), kind.name),
		Description: f.faker.Sentence(8),
		Location:    locations[f.faker.Number(0, len(locations)-1)],
	}
}

// RandomStatus picks a lifecycle status.
func (f *Factory) RandomStatus() models.RequestStatusID {
	all := models.AllStatuses()
	return all[f.faker.Number(0, len(all)-1)]
}

// Demo fills db with fake users, tools and requests. Every tool is requested at
// most once, so generated requests never collide on the active-code index.
func Demo(ctx context.Context, db *gorm.DB, opts Options) (Summary, error) {
	var sum Summary
	if opts.Users <= 0 || opts.Tools <= 0 {
		return sum, fmt.Errorf("demo seed needs at least one user and one tool")
	}
	if opts.Requests > opts.Tools {
		opts.Requests = opts.Tools
	}

	f := NewFactory(opts.Seed)

	users := make([]models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		users = append(users, f.BuildUser(i+1))
	}
	if err := db.WithContext(ctx).Create(&users).Error; err != nil {
		return sum, fmt.Errorf("create demo users: %w", err)
	}
	sum.Users = len(users)

	items := make([]models.InventoryItem, 0, opts.Tools)
	codes := make([]string, 0, opts.Tools)
	for i := 0; i < opts.Tools; i++ {
		item := f.BuildInventoryItem(i)
		items = append(items, item)
		codes = append(codes, item.Code)
	}
	if err := Inventory(ctx, repository.NewInventoryRepository(db), items); err != nil {
		return sum, err
	}
	sum.Tools = len(items)

	// Upserted rows may not report their ids, so read them back.
	var stored []models.InventoryItem
	if err := db.WithContext(ctx).Where("code IN ?", codes).Order("code ASC").Find(&stored).Error; err != nil {
		return sum, fmt.Errorf("reload demo tools: %w", err)
	}

	requests := repository.NewToolRequestRepository(db)
	for i := 0; i < opts.Requests && i < len(stored); i++ {
		req := &models.ToolRequest{
			UserID:   users[f.faker.Number(0, len(users)-1)].ID,
			ToolID:   stored[i].ID,
			StatusID: f.RandomStatus(),
			Code:     stored[i].Code,
		}
		if err := requests.Create(ctx, req); err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == models.CodeConflict {
				continue
			}
			return sum, fmt.Errorf("create demo request %s: %w", req.Code, err)
		}
		sum.Requests++
	}

	return sum, nil
}
