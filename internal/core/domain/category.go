package domain

// Category is a fixed lot category. The set is seeded by migration and
// only changes through new migrations.
type Category struct {
	ID   int64
	Slug string
	Name string
}

// CategoryIDs returns the allowed-id set used by the category form
// validator.
func CategoryIDs(categories []Category) map[int64]bool {
	ids := make(map[int64]bool, len(categories))
	for _, c := range categories {
		ids[c.ID] = true
	}
	return ids
}
