package usecase

import (
	"fmt"

	"artisanx/internal/domain/entity"
)

// Pages a notification link can open.
const (
	PageVolunteers     = "volunteers"
	PageCustomerOffers = "customer-offers"
	PageDashboard      = "dashboard"
	PageChat           = "chat"
	PageCustomerChat   = "customer-chat"
)

// Transition is a notification derived from two consecutive snapshots.
type Transition struct {
	Message string
	Type    entity.NotificationType
	Link    *entity.NotificationLink
}

func chatPageFor(role entity.Role) string {
	if role == entity.RoleCustomer {
		return PageCustomerChat
	}
	return PageChat
}

// diffTrackers hold the last snapshot seen per domain. nil means no snapshot
// has been seen since the last (re)subscribe, so the next one only primes.
type diffTrackers struct {
	volunteers  []entity.User
	bargains    []entity.BargainRequest
	connections []entity.ConnectionRequest
}

// DiffVolunteerCertificates notifies userID when their completed project
// count grows.
func DiffVolunteerCertificates(prev, next []entity.User, userID string) []Transition {
	var before, after *entity.User
	for i := range prev {
		if prev[i].ID == userID {
			before = &prev[i]
		}
	}
	for i := range next {
		if next[i].ID == userID {
			after = &next[i]
		}
	}
	if before == nil || after == nil || len(after.CompletedProjects) <= len(before.CompletedProjects) {
		return nil
	}

	newest := after.CompletedProjects[len(after.CompletedProjects)-1]
	return []Transition{{
		Message: fmt.Sprintf("You've received a certificate for \"%s\"!", newest.ProjectName),
		Type:    entity.NotificationSuccess,
		Link:    &entity.NotificationLink{Text: "View My Certifications", Page: PageVolunteers},
	}}
}

// DiffBargainRequests reports offers that left pending, as seen by the
// customer who made them.
func DiffBargainRequests(prev, next []entity.BargainRequest) []Transition {
	before := make(map[string]entity.BargainRequest, len(prev))
	for _, r := range prev {
		before[r.ID] = r
	}

	var out []Transition
	for _, r := range next {
		old, ok := before[r.ID]
		if !ok || old.Status != entity.BargainPending {
			continue
		}
		switch r.Status {
		case entity.BargainAccepted:
			out = append(out, Transition{
				Message: fmt.Sprintf("Offer accepted for \"%s\"!", r.ProductName),
				Type:    entity.NotificationSuccess,
				Link:    &entity.NotificationLink{Text: "View My Offers", Page: PageCustomerOffers},
			})
		case entity.BargainRejected:
			out = append(out, Transition{
				Message: fmt.Sprintf("Your offer for \"%s\" was not accepted.", r.ProductName),
				Type:    entity.NotificationInfo,
			})
		}
	}
	return out
}

// MergeConnectionRequests joins the received and sent results, keeping the
// first occurrence of each document.
func MergeConnectionRequests(received, sent []entity.ConnectionRequest) []entity.ConnectionRequest {
	seen := make(map[string]bool, len(received)+len(sent))
	out := make([]entity.ConnectionRequest, 0, len(received)+len(sent))
	for _, list := range [][]entity.ConnectionRequest{received, sent} {
		for _, r := range list {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			out = append(out, r)
		}
	}
	return out
}

// DiffConnectionRequests notifies the receiver of new requests and the
// sender of answered ones. nameOf resolves a user id to a display name and
// returns "" when unknown.
func DiffConnectionRequests(prev, next []entity.ConnectionRequest, viewerID string, viewerRole entity.Role, nameOf func(id string) string) []Transition {
	before := make(map[string]entity.ConnectionRequest, len(prev))
	for _, r := range prev {
		before[r.ID] = r
	}

	requestsPage := PageDashboard
	if viewerRole == entity.RoleCustomer {
		requestsPage = PageCustomerOffers
	}

	var out []Transition
	for _, r := range next {
		old, existed := before[r.ID]
		if !existed {
			if r.Status == entity.ConnectionPending && r.ReceiverID == viewerID {
				out = append(out, Transition{
					Message: fmt.Sprintf("%s wants to connect.", r.SenderName),
					Type:    entity.NotificationInfo,
					Link:    &entity.NotificationLink{Text: "View Requests", Page: requestsPage},
				})
			}
			continue
		}

		if old.Status != entity.ConnectionPending || r.SenderID != viewerID {
			continue
		}
		name := "The user"
		if nameOf != nil {
			if n := nameOf(r.ReceiverID); n != "" {
				name = n
			}
		}
		switch r.Status {
		case entity.ConnectionAccepted:
			out = append(out, Transition{
				Message: fmt.Sprintf("%s accepted your connection request!", name),
				Type:    entity.NotificationSuccess,
				Link:    &entity.NotificationLink{Text: "Go to Chat", Page: chatPageFor(viewerRole)},
			})
		case entity.ConnectionRejected:
			out = append(out, Transition{
				Message: fmt.Sprintf("%s declined your connection request.", name),
				Type:    entity.NotificationInfo,
			})
		}
	}
	return out
}
