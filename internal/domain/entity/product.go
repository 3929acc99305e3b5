package entity

import "time"

type Product struct {
	ID            string    `json:"id" firestore:"id"`
	Name          string    `json:"name" firestore:"name"`
	Description   string    `json:"description" firestore:"description"`
	Price         float64   `json:"price" firestore:"price"`
	Image         string    `json:"image" firestore:"image"`
	Category      string    `json:"category" firestore:"category"`
	ArtisanID     string    `json:"artisanId" firestore:"artisanId"`
	CertificateID string    `json:"certificateId,omitempty" firestore:"certificateId,omitempty"`
	DateAdded     time.Time `json:"dateAdded" firestore:"dateAdded"`
}

func (p *Product) SetID(id string) { p.ID = id }

type CartItem struct {
	Product    Product  `json:"product"`
	Quantity   int      `json:"quantity"`
	OfferPrice *float64 `json:"offerPrice,omitempty"`
}

// Cart is the per-session basket plus the favorited product ids.
type Cart struct {
	Items     []CartItem `json:"items"`
	Favorites []string   `json:"favorites"`
}
