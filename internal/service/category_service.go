package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/granaflow/backend/internal/model"
	"github.com/granaflow/backend/internal/store"
)

// CategoryService manages the category taxonomy and resolves
// categorization names to stored IDs.
type CategoryService struct {
	store store.Store
	now   func() time.Time
}

func NewCategoryService(st store.Store) *CategoryService {
	return &CategoryService{store: st, now: time.Now}
}

// CategoryNotFoundError is returned when a name cannot be resolved even
// through the Other/Uncategorized fallback chain, meaning the taxonomy
// was never seeded.
type CategoryNotFoundError struct {
	Name string
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category %q not found and no fallback category exists", e.Name)
}

const (
	fallbackCategoryName    = "Other"
	fallbackSubcategoryName = "Uncategorized"
)

// defaultCategories is the taxonomy installed on first startup.
var defaultCategories = []model.Category{
	{Name: "Housing", Color: "#8B5CF6", Icon: "home", Hint: "rent, utilities, condo fees, repairs",
		Subcategories: []model.Subcategory{{Name: "Rent"}, {Name: "Utilities"}, {Name: "Maintenance"}, {Name: "Other"}}},
	{Name: "Food", Color: "#F59E0B", Icon: "utensils", Hint: "groceries, restaurants, delivery",
		Subcategories: []model.Subcategory{{Name: "Groceries"}, {Name: "Restaurants"}, {Name: "Delivery"}, {Name: "Other"}}},
	{Name: "Transportation", Color: "#3B82F6", Icon: "car", Hint: "fuel, transit, rideshare, parking",
		Subcategories: []model.Subcategory{{Name: "Fuel"}, {Name: "Public Transit"}, {Name: "Rideshare"}, {Name: "Other"}}},
	{Name: "Health", Color: "#EF4444", Icon: "heart", Hint: "pharmacy, doctors, insurance, gym",
		Subcategories: []model.Subcategory{{Name: "Pharmacy"}, {Name: "Medical"}, {Name: "Insurance"}, {Name: "Fitness"}, {Name: "Other"}}},
	{Name: "Entertainment", Color: "#EC4899", Icon: "film", Hint: "streaming, events, hobbies, travel",
		Subcategories: []model.Subcategory{{Name: "Streaming"}, {Name: "Events"}, {Name: "Travel"}, {Name: "Other"}}},
	{Name: "Shopping", Color: "#10B981", Icon: "shopping-bag", Hint: "clothing, electronics, household goods",
		Subcategories: []model.Subcategory{{Name: "Clothing"}, {Name: "Electronics"}, {Name: "Household"}, {Name: "Other"}}},
	{Name: "Other", Color: "#6B7280", Icon: "circle", Hint: "anything that fits nowhere else",
		Subcategories: []model.Subcategory{{Name: "Uncategorized"}}},
}

// SeedDefaults installs the default taxonomy if the store holds no
// categories yet. Safe to call on every startup.
func (s *CategoryService) SeedDefaults(ctx context.Context) error {
	count, err := s.store.CountCategories(ctx)
	if err != nil {
		return fmt.Errorf("counting categories: %w", err)
	}
	if count > 0 {
		return nil
	}
	now := s.now().UTC()
	for i, def := range defaultCategories {
		cat := def
		cat.ID = uuid.New().String()
		cat.IsDefault = true
		cat.Order = i
		cat.CreatedAt = now
		cat.UpdatedAt = now
		subs := make([]model.Subcategory, len(def.Subcategories))
		for j, sub := range def.Subcategories {
			subs[j] = model.Subcategory{ID: uuid.New().String(), Name: sub.Name}
		}
		cat.Subcategories = subs
		if err := s.store.CreateCategory(ctx, &cat); err != nil {
			return fmt.Errorf("seeding category %q: %w", cat.Name, err)
		}
	}
	slog.Info("default categories seeded", "count", len(defaultCategories))
	return nil
}

// List returns all categories ordered by their display order.
func (s *CategoryService) List(ctx context.Context) ([]*model.Category, error) {
	return s.store.ListCategories(ctx)
}

// Create stores a custom category.
func (s *CategoryService) Create(ctx context.Context, cat *model.Category) (*model.Category, error) {
	if cat.Name == "" {
		return nil, Validationf("category name is required")
	}
	now := s.now().UTC()
	cat.ID = uuid.New().String()
	for i := range cat.Subcategories {
		if cat.Subcategories[i].ID == "" {
			cat.Subcategories[i].ID = uuid.New().String()
		}
	}
	cat.CreatedAt = now
	cat.UpdatedAt = now
	if err := s.store.CreateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return cat, nil
}

// Update replaces a category document.
func (s *CategoryService) Update(ctx context.Context, cat *model.Category) (*model.Category, error) {
	if cat.Name == "" {
		return nil, Validationf("category name is required")
	}
	existing, err := s.store.GetCategory(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	cat.CreatedAt = existing.CreatedAt
	for i := range cat.Subcategories {
		if cat.Subcategories[i].ID == "" {
			cat.Subcategories[i].ID = uuid.New().String()
		}
	}
	cat.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("updating category: %w", err)
	}
	return cat, nil
}

// Delete removes a category. Default categories cannot be deleted.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	cat, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if cat.IsDefault {
		return Validationf("default category %q cannot be deleted", cat.Name)
	}
	return s.store.DeleteCategory(ctx, id)
}

// CategoryIndex resolves category and subcategory names, as returned by
// the categorization oracle, to stored IDs. Lookups are case-insensitive.
type CategoryIndex struct {
	byName map[string]*model.Category
}

// Index loads all categories into a name index. Build one per import run
// rather than per row.
func (s *CategoryService) Index(ctx context.Context) (*CategoryIndex, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	idx := &CategoryIndex{byName: make(map[string]*model.Category, len(cats))}
	for _, c := range cats {
		idx.byName[strings.ToLower(c.Name)] = c
	}
	return idx, nil
}

// Resolve maps a category/subcategory name pair to IDs. Unknown category
// names fall back to Other; unknown subcategory names fall back to the
// category's Other subcategory, then to Uncategorized under Other.
func (idx *CategoryIndex) Resolve(category, subcategory string) (categoryID, subcategoryID string, err error) {
	cat, ok := idx.byName[strings.ToLower(category)]
	if !ok {
		cat, ok = idx.byName[strings.ToLower(fallbackCategoryName)]
		if !ok {
			return "", "", &CategoryNotFoundError{Name: category}
		}
	}
	if sub, ok := idx.lookupSub(cat, subcategory); ok {
		return cat.ID, sub.ID, nil
	}
	if sub, ok := idx.lookupSub(cat, "Other"); ok {
		return cat.ID, sub.ID, nil
	}
	if len(cat.Subcategories) > 0 {
		return cat.ID, cat.Subcategories[0].ID, nil
	}
	if other, ok := idx.byName[strings.ToLower(fallbackCategoryName)]; ok {
		if sub, ok := idx.lookupSub(other, fallbackSubcategoryName); ok {
			return other.ID, sub.ID, nil
		}
	}
	return "", "", &CategoryNotFoundError{Name: category + "/" + subcategory}
}

func (idx *CategoryIndex) lookupSub(cat *model.Category, name string) (model.Subcategory, bool) {
	for _, s := range cat.Subcategories {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return model.Subcategory{}, false
}
