package entity

// Certificate of authenticity issued by an artisan, optionally bound to the
// product it certifies.
type Certificate struct {
	ID                  string `json:"id" firestore:"id"`
	ArtistName          string `json:"artistName" firestore:"artistName"`
	ArtworkTitle        string `json:"artworkTitle" firestore:"artworkTitle"`
	Medium              string `json:"medium,omitempty" firestore:"medium,omitempty"`
	Dimensions          string `json:"dimensions,omitempty" firestore:"dimensions,omitempty"`
	CreationDate        string `json:"creationDate,omitempty" firestore:"creationDate,omitempty"`
	Description         string `json:"description,omitempty" firestore:"description,omitempty"`
	AssignedToProductID string `json:"assignedToProductId,omitempty" firestore:"assignedToProductId,omitempty"`
}

func (c *Certificate) SetID(id string) { c.ID = id }
