package usecase

import (
	"artisanx/internal/domain/entity"
	"artisanx/internal/domain/repository"
)

// scopedDomains are the watches whose query depends on who is signed in.
var scopedDomains = []Domain{
	DomainCertificates,
	DomainConversations,
	DomainBargainRequests,
	DomainConnectionsReceived,
	DomainConnectionsSent,
	DomainApplications,
	DomainCollaborations,
}

// scopedQueries returns the query each scoped domain should run for u.
// Domains missing from the result must not be watched.
func scopedQueries(u *entity.User) map[Domain]repository.Query {
	out := make(map[Domain]repository.Query)
	if u == nil || u.ID == "" {
		return out
	}

	switch u.Role {
	case entity.RoleArtisan:
		out[DomainCertificates] = repository.NewQuery(repository.CollectionCertificates).
			Where("artistName", repository.OpEqual, u.Name)
		out[DomainBargainRequests] = repository.NewQuery(repository.CollectionBargainRequests).
			Where("artisanId", repository.OpEqual, u.ID)
		out[DomainApplications] = repository.NewQuery(repository.CollectionProjectApplications).
			Where("artisanId", repository.OpEqual, u.ID)
		out[DomainCollaborations] = repository.NewQuery(repository.CollectionCollaborations).
			Where("artisanId", repository.OpEqual, u.ID)
	case entity.RoleVolunteer:
		out[DomainApplications] = repository.NewQuery(repository.CollectionProjectApplications).
			Where("volunteerId", repository.OpEqual, u.ID)
		out[DomainCollaborations] = repository.NewQuery(repository.CollectionCollaborations).
			Where("volunteerId", repository.OpEqual, u.ID)
	case entity.RoleCustomer:
		out[DomainBargainRequests] = repository.NewQuery(repository.CollectionBargainRequests).
			Where("customerId", repository.OpEqual, u.ID)
	}

	if !u.IsGuest() {
		out[DomainConversations] = repository.NewQuery(repository.CollectionConversations).
			Where("participantIds", repository.OpArrayContains, u.ID)
		out[DomainConnectionsReceived] = repository.NewQuery(repository.CollectionConnectionRequests).
			Where("receiverId", repository.OpEqual, u.ID)
		out[DomainConnectionsSent] = repository.NewQuery(repository.CollectionConnectionRequests).
			Where("senderId", repository.OpEqual, u.ID)
	}
	return out
}

func messagesQuery(conversationID string) repository.Query {
	return repository.NewQuery(repository.MessagesCollection(conversationID)).
		Order("timestamp", repository.Asc)
}
