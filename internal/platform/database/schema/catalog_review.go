package schema

// CatalogReviewTable represents the 'catalog.review' table (own reviews of a private copy)
type CatalogReviewTable struct {
	Table     string
	ID        string
	GameID    string
	Text      string
	Rating    string
	CreatedAt string
}

// CatalogReview is the schema definition for catalog.review
var CatalogReview = CatalogReviewTable{
	Table:     "catalog.review",
	ID:        "id",
	GameID:    "gameid",
	Text:      "text",
	Rating:    "rating",
	CreatedAt: "createdat",
}

// Columns returns all standard column names
func (t CatalogReviewTable) Columns() []string {
	return []string{t.ID, t.GameID, t.Text, t.Rating, t.CreatedAt}
}
