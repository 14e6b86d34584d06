package schema

// CatalogGameTable represents the 'catalog.game' table.
//
// One table holds both roles of a game: public catalog entries (ispublic,
// no owner) and private library copies (owned, not public).
type CatalogGameTable struct {
	Table       string
	ID          string
	Title       string
	Description string
	Category    string
	Image       string
	Developer   string
	Size        string
	Version     string
	Year        string
	Rating      string
	Completed   string
	Progress    string
	IsPublic    string
	OwnerID     string
	SourceKey   string
	CreatedAt   string
	UpdatedAt   string
}

// CatalogGame is the schema definition for catalog.game
var CatalogGame = CatalogGameTable{
	Table:       "catalog.game",
	ID:          "id",
	Title:       "title",
	Description: "description",
	Category:    "category",
	Image:       "image",
	Developer:   "developer",
	Size:        "size",
	Version:     "version",
	Year:        "year",
	Rating:      "rating",
	Completed:   "completed",
	Progress:    "progress",
	IsPublic:    "ispublic",
	OwnerID:     "ownerid",
	SourceKey:   "sourcekey",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t CatalogGameTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Description, t.Category, t.Image, t.Developer, t.Size,
		t.Version, t.Year, t.Rating, t.Completed, t.Progress, t.IsPublic,
		t.OwnerID, t.SourceKey, t.CreatedAt, t.UpdatedAt,
	}
}
