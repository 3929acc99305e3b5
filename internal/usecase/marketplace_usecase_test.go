package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artisanx/internal/domain/entity"
	"artisanx/internal/domain/repository"
	apperrors "artisanx/pkg/errors"
)

var customer = entity.User{ID: "c1", Name: "Kabir", Role: entity.RoleCustomer}

func TestAddProduct_LinksCertificate(t *testing.T) {
	h := newHarness()
	uc := h.deps.Marketplace
	ctx := context.Background()

	cert, err := uc.AddCertificate(ctx, &artisan, AddCertificateInput{ArtworkTitle: "Cobalt Vase", Medium: "Quartz clay"})
	require.NoError(t, err)
	assert.Equal(t, artisan.Name, cert.ArtistName)

	product, err := uc.AddProduct(ctx, &artisan, AddProductInput{Name: "Cobalt Vase", Price: 800, CertificateID: cert.ID})
	require.NoError(t, err)
	assert.Equal(t, artisan.ID, product.ArtisanID)

	stored, err := uc.GetCertificate(ctx, cert.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, stored.AssignedToProductID)

	_, err = uc.AddProduct(ctx, &artisan, AddProductInput{Name: "Second", Price: 10, CertificateID: cert.ID})
	assert.True(t, apperrors.Is(err, "CONFLICT"), "a certificate backs one product")
}

func TestAddProduct_MissingCertificateWritesNothing(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.deps.Marketplace.AddProduct(ctx, &artisan, AddProductInput{Name: "Bowl", Price: 300, CertificateID: "nope"})
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))

	docs, err := h.store.Find(ctx, repository.NewQuery(repository.CollectionProducts))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestGetCertificate_Missing(t *testing.T) {
	h := newHarness()
	cert, err := h.deps.Marketplace.GetCertificate(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, cert)
}

func TestBargainLifecycle(t *testing.T) {
	h := newHarness()
	uc := h.deps.Marketplace
	ctx := context.Background()
	h.putProduct(ctx, entity.Product{ID: "p1", Name: "Dokra Horse", Price: 800, ArtisanID: artisan.ID})

	id, err := uc.CreateBargainRequest(ctx, &customer, "p1", 500)
	require.NoError(t, err)

	load := func() *entity.BargainRequest {
		req, err := loadEntity[entity.BargainRequest](ctx, h.store, repository.Doc(repository.CollectionBargainRequests, id), "bargain")
		require.NoError(t, err)
		return req
	}
	req := load()
	assert.Equal(t, entity.BargainPending, req.Status)
	assert.Equal(t, customer.ID, req.CustomerID)
	assert.Equal(t, artisan.ID, req.ArtisanID)
	assert.Equal(t, 800.0, req.OriginalPrice)
	assert.Equal(t, 500.0, req.OfferPrice)
	assert.False(t, req.RequestDate.IsZero(), "request date is stamped by the store")

	err = uc.CompleteBargainRequest(ctx, &artisan, id)
	assert.True(t, apperrors.Is(err, "PRECONDITION_FAILED"), "only accepted offers complete")

	other := entity.User{ID: "a2", Name: "Arjun", Role: entity.RoleArtisan}
	err = uc.UpdateBargainRequestStatus(ctx, &other, id, entity.BargainAccepted)
	assert.True(t, apperrors.Is(err, "FORBIDDEN"))

	require.NoError(t, uc.UpdateBargainRequestStatus(ctx, &artisan, id, entity.BargainAccepted))
	assert.Equal(t, entity.BargainAccepted, load().Status)

	err = uc.UpdateBargainRequestStatus(ctx, &artisan, id, entity.BargainRejected)
	assert.True(t, apperrors.Is(err, "PRECONDITION_FAILED"))

	require.NoError(t, uc.CompleteBargainRequest(ctx, &customer, id))
	assert.Equal(t, entity.BargainCompleted, load().Status)
}

func TestCreateBargainRequest_Preconditions(t *testing.T) {
	h := newHarness()
	uc := h.deps.Marketplace
	ctx := context.Background()

	_, err := uc.CreateBargainRequest(ctx, &artisan, "p1", 500)
	assert.True(t, apperrors.Is(err, "FORBIDDEN"))

	_, err = uc.CreateBargainRequest(ctx, &customer, "p1", 0)
	assert.True(t, apperrors.Is(err, "BAD_REQUEST"))

	_, err = uc.CreateBargainRequest(ctx, &customer, "missing", 100)
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))

	docs, err := h.store.Find(ctx, repository.NewQuery(repository.CollectionBargainRequests))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

type denyAll struct{}

func (denyAll) Allow(string, string) (bool, time.Duration) { return false, time.Second }

func TestCreateBargainRequest_RateLimited(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.putProduct(ctx, entity.Product{ID: "p1", Name: "Vase", Price: 800, ArtisanID: artisan.ID})

	uc := NewMarketplaceUseCase(h.store, denyAll{})
	_, err := uc.CreateBargainRequest(ctx, &customer, "p1", 500)
	assert.True(t, apperrors.Is(err, "TOO_MANY_REQUESTS"))
}
