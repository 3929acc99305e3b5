package usecase

import (
	"context"
	"strings"
	"time"

	"artisanx/internal/domain/entity"
	"artisanx/internal/domain/repository"
	"artisanx/pkg/errors"
	"artisanx/pkg/logger"
)

// MarketplaceUseCase covers products, certificates of authenticity and
// price offers.
type MarketplaceUseCase struct {
	store   repository.DocumentStore
	limiter Limiter
}

func NewMarketplaceUseCase(store repository.DocumentStore, limiter Limiter) *MarketplaceUseCase {
	return &MarketplaceUseCase{
		store:   store,
		limiter: limiter,
	}
}

type AddProductInput struct {
	Name          string
	Description   string
	Price         float64
	Image         string
	Category      string
	CertificateID string
}

// AddProduct creates the product and, when a certificate is given, points
// the certificate at the new product in the same batch.
func (uc *MarketplaceUseCase) AddProduct(ctx context.Context, actor *entity.User, input AddProductInput) (*entity.Product, error) {
	if err := requireRole(actor, entity.RoleArtisan); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.BadRequest("product name is required", nil)
	}
	if input.Price <= 0 {
		return nil, errors.BadRequest("price must be positive", nil)
	}

	var certRef repository.DocRef
	if input.CertificateID != "" {
		certRef = repository.Doc(repository.CollectionCertificates, input.CertificateID)
		cert, err := loadEntity[entity.Certificate](ctx, uc.store, certRef, "certificate")
		if err != nil {
			return nil, err
		}
		if cert.ArtistName != actor.Name {
			return nil, errors.Forbidden("certificate was issued by another artisan", nil)
		}
		if cert.AssignedToProductID != "" {
			return nil, errors.Conflict("certificate is already assigned to a product")
		}
	}

	ref := uc.store.NewRef(repository.CollectionProducts)
	product := entity.Product{
		ID:            ref.ID,
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		Image:         input.Image,
		Category:      input.Category,
		ArtisanID:     actor.ID,
		CertificateID: input.CertificateID,
		DateAdded:     time.Now().UTC(),
	}

	batch := uc.store.Batch().Set(ref, product)
	if input.CertificateID != "" {
		batch.Update(certRef, []repository.Update{field("assignedToProductId", ref.ID)})
	}
	if err := batch.Commit(ctx); err != nil {
		logger.Error("AddProduct Error: %v", err)
		return nil, err
	}
	return &product, nil
}

type AddCertificateInput struct {
	ArtworkTitle string
	Medium       string
	Dimensions   string
	CreationDate string
	Description  string
}

func (uc *MarketplaceUseCase) AddCertificate(ctx context.Context, actor *entity.User, input AddCertificateInput) (*entity.Certificate, error) {
	if err := requireRole(actor, entity.RoleArtisan); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.ArtworkTitle) == "" {
		return nil, errors.BadRequest("artwork title is required", nil)
	}

	cert := entity.Certificate{
		ArtistName:   actor.Name,
		ArtworkTitle: input.ArtworkTitle,
		Medium:       input.Medium,
		Dimensions:   input.Dimensions,
		CreationDate: input.CreationDate,
		Description:  input.Description,
	}
	ref, err := uc.store.Add(ctx, repository.CollectionCertificates, cert)
	if err != nil {
		logger.Error("AddCertificate Error: %v", err)
		return nil, err
	}
	cert.ID = ref.ID
	return &cert, nil
}

// GetCertificate returns nil without an error when the certificate does not
// exist.
func (uc *MarketplaceUseCase) GetCertificate(ctx context.Context, certificateID string) (*entity.Certificate, error) {
	doc, err := uc.store.Get(ctx, repository.Doc(repository.CollectionCertificates, certificateID))
	if err != nil {
		logger.Error("GetCertificate Error: %v", err)
		return nil, err
	}
	if !doc.Exists() {
		return nil, nil
	}
	return repository.DecodeOne[entity.Certificate](doc)
}

func (uc *MarketplaceUseCase) CreateBargainRequest(ctx context.Context, actor *entity.User, productID string, offerPrice float64) (string, error) {
	if err := requireRole(actor, entity.RoleCustomer); err != nil {
		return "", err
	}
	if offerPrice <= 0 {
		return "", errors.BadRequest("offer price must be positive", nil)
	}
	if err := checkRate(uc.limiter, actor, "bargain_offer"); err != nil {
		return "", err
	}

	product, err := loadEntity[entity.Product](ctx, uc.store, repository.Doc(repository.CollectionProducts, productID), "product")
	if err != nil {
		return "", err
	}
	if product.ArtisanID == "" {
		return "", errors.PreconditionFailed("product has no artisan")
	}

	ref, err := uc.store.Add(ctx, repository.CollectionBargainRequests, map[string]interface{}{
		"productId":     product.ID,
		"productName":   product.Name,
		"productImage":  product.Image,
		"customerId":    actor.ID,
		"customerName":  actor.Name,
		"artisanId":     product.ArtisanID,
		"originalPrice": product.Price,
		"offerPrice":    offerPrice,
		"status":        entity.BargainPending,
		"requestDate":   repository.ServerTimestamp,
	})
	if err != nil {
		logger.Error("CreateBargainRequest Error: %v", err)
		return "", err
	}
	return ref.ID, nil
}

// UpdateBargainRequestStatus lets the product's artisan answer a pending
// offer.
func (uc *MarketplaceUseCase) UpdateBargainRequestStatus(ctx context.Context, actor *entity.User, requestID string, status entity.BargainStatus) error {
	if err := requireRole(actor, entity.RoleArtisan); err != nil {
		return err
	}
	if status != entity.BargainAccepted && status != entity.BargainRejected {
		return errors.BadRequest("status must be accepted or rejected", nil)
	}
	return uc.moveBargain(ctx, requestID, entity.BargainPending, status, func(r *entity.BargainRequest) error {
		if r.ArtisanID != actor.ID {
			return errors.Forbidden("this offer was not made to you", nil)
		}
		return nil
	})
}

// CompleteBargainRequest marks an accepted offer as fulfilled. Completed is
// terminal.
func (uc *MarketplaceUseCase) CompleteBargainRequest(ctx context.Context, actor *entity.User, requestID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	return uc.moveBargain(ctx, requestID, entity.BargainAccepted, entity.BargainCompleted, func(r *entity.BargainRequest) error {
		if r.ArtisanID != actor.ID && r.CustomerID != actor.ID {
			return errors.Forbidden("this offer is not yours", nil)
		}
		return nil
	})
}

func (uc *MarketplaceUseCase) moveBargain(ctx context.Context, requestID string, from, to entity.BargainStatus, authorize func(*entity.BargainRequest) error) error {
	ref := repository.Doc(repository.CollectionBargainRequests, requestID)
	err := uc.store.RunTransaction(ctx, func(ctx context.Context, tx repository.Transaction) error {
		req, err := txLoad[entity.BargainRequest](tx, ref, "bargain request")
		if err != nil {
			return err
		}
		if err := authorize(req); err != nil {
			return err
		}
		if req.Status != from {
			return errors.PreconditionFailed("offer is " + string(req.Status) + ", expected " + string(from))
		}
		return tx.Update(ref, []repository.Update{field("status", to)})
	})
	if err != nil {
		logger.Error("UpdateBargainRequest Error: %v", err)
	}
	return err
}
