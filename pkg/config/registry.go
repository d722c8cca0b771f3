package config

// Persistent state keys (Registry)
const (
	KeyCategoryVisibility = "category_visibility" // JSON object glyph -> bool
	KeyShowFeatured       = "show_featured"       // "true"/"false" ("1" accepted on read)
)
