package tweet

import "github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/identity"

// Card is what a viewer sees for one tweet. CanDelete only exposes the
// intent; nothing deletes tweets yet.
type Card struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"username"`
	Text        string  `json:"tweet"`
	PhotoURL    *string `json:"photo,omitempty"`
	CreatedAt   int64   `json:"createdAt"`
	CanDelete   bool    `json:"canDelete"`
}

// Render projects a post for the given viewer, nil meaning anonymous.
func Render(post Post, viewer *identity.Actor) Card {
	return Card{
		ID:          post.ID,
		DisplayName: post.AuthorDisplayName,
		Text:        post.Text,
		PhotoURL:    post.PhotoURL,
		CreatedAt:   post.CreatedAt,
		CanDelete:   viewer != nil && viewer.ID != "" && viewer.ID == post.AuthorID,
	}
}

func RenderAll(posts []Post, viewer *identity.Actor) []Card {
	cards := make([]Card, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, Render(p, viewer))
	}
	return cards
}
