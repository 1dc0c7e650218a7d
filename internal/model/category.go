package model

import "time"

// Category groups expenses. Subcategories are embedded in the category
// document, mirroring how the store keeps them as a single unit.
type Category struct {
	ID            string        `firestore:"id" json:"id"`
	Name          string        `firestore:"name" json:"name"`
	Color         string        `firestore:"color" json:"color"`
	Hint          string        `firestore:"hint" json:"hint,omitempty"`
	Icon          string        `firestore:"icon" json:"icon,omitempty"`
	IsDefault     bool          `firestore:"isDefault" json:"isDefault"`
	Order         int           `firestore:"order" json:"order"`
	Subcategories []Subcategory `firestore:"subcategories" json:"subcategories"`
	CreatedAt     time.Time     `firestore:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `firestore:"updatedAt" json:"updatedAt"`
}

// Subcategory is a named subdivision of a category.
type Subcategory struct {
	ID   string `firestore:"id" json:"id"`
	Name string `firestore:"name" json:"name"`
}

// Subcategory returns the embedded subcategory with the given id.
func (c *Category) Subcategory(id string) (Subcategory, bool) {
	for _, s := range c.Subcategories {
		if s.ID == id {
			return s, true
		}
	}
	return Subcategory{}, false
}
