package schema

// SocialSharedReviewTable represents the 'social.sharedreview' table
type SocialSharedReviewTable struct {
	Table       string
	ID          string
	ReviewID    string
	Key         string
	Title       string
	Developer   string
	Text        string
	Rating      string
	AuthorEmail string
	CreatedAt   string
}

// SocialSharedReview is the schema definition for social.sharedreview
var SocialSharedReview = SocialSharedReviewTable{
	Table:       "social.sharedreview",
	ID:          "id",
	ReviewID:    "reviewid",
	Key:         "key",
	Title:       "title",
	Developer:   "developer",
	Text:        "text",
	Rating:      "rating",
	AuthorEmail: "authoremail",
	CreatedAt:   "createdat",
}

// Columns returns all standard column names
func (t SocialSharedReviewTable) Columns() []string {
	return []string{t.ID, t.ReviewID, t.Key, t.Title, t.Developer, t.Text, t.Rating, t.AuthorEmail, t.CreatedAt}
}
