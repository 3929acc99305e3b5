package entity

import "time"

type BargainStatus string

const (
	BargainPending   BargainStatus = "pending"
	BargainAccepted  BargainStatus = "accepted"
	BargainRejected  BargainStatus = "rejected"
	BargainCompleted BargainStatus = "completed"
)

type BargainRequest struct {
	ID            string        `json:"id" firestore:"id"`
	ProductID     string        `json:"productId" firestore:"productId"`
	ProductName   string        `json:"productName" firestore:"productName"`
	ProductImage  string        `json:"productImage" firestore:"productImage"`
	CustomerID    string        `json:"customerId" firestore:"customerId"`
	CustomerName  string        `json:"customerName" firestore:"customerName"`
	ArtisanID     string        `json:"artisanId" firestore:"artisanId"`
	OriginalPrice float64       `json:"originalPrice" firestore:"originalPrice"`
	OfferPrice    float64       `json:"offerPrice" firestore:"offerPrice"`
	Status        BargainStatus `json:"status" firestore:"status"`
	RequestDate   time.Time     `json:"requestDate" firestore:"requestDate"`
}

func (b *BargainRequest) SetID(id string) { b.ID = id }
