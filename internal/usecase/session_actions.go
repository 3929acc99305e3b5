package usecase

import (
	"context"

	"artisanx/internal/domain/entity"
	"artisanx/pkg/errors"
	"artisanx/pkg/logger"
)

// actor is the acting profile for write protocols.
func (s *Session) actor() *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

// storeFailed routes a failed one-off read or write through the same path
// as watch errors.
func (s *Session) storeFailed(domain Domain, err error) {
	if IsDegradingError(err) {
		s.run(func() { s.watchFailed(domain, err) })
	}
}

func (s *Session) Cart() entity.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCart(s.state.cart)
}

// updateCart applies fn to the cart and persists the result for signed-in
// users.
func (s *Session) updateCart(ctx context.Context, fn func(c *entity.Cart) error) (entity.Cart, error) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return entity.Cart{}, errors.Unauthorized("sign in first", nil)
	}
	if err := fn(&s.state.cart); err != nil {
		s.mu.Unlock()
		return entity.Cart{}, err
	}
	cart := cloneCart(s.state.cart)
	userID := s.user.ID
	persist := !s.user.IsGuest() && s.deps.Carts != nil
	s.publishDomain("cart", cart)
	s.mu.Unlock()

	if persist {
		var err error
		if len(cart.Items) == 0 && len(cart.Favorites) == 0 {
			err = s.deps.Carts.Delete(ctx, userID)
		} else {
			err = s.deps.Carts.Save(ctx, userID, &cart)
		}
		if err != nil {
			logger.Error("Save cart for %s: %v", userID, err)
			return cart, errors.Internal("could not save cart", err)
		}
	}
	return cart, nil
}

// AddToCart adds one unit of a loaded product. Adding it again increments
// the quantity and keeps the latest offer price.
func (s *Session) AddToCart(ctx context.Context, productID string, offerPrice *float64) (entity.Cart, error) {
	return s.updateCart(ctx, func(c *entity.Cart) error {
		for i := range c.Items {
			if c.Items[i].Product.ID == productID {
				c.Items[i].Quantity++
				c.Items[i].OfferPrice = offerPrice
				return nil
			}
		}
		for _, p := range s.state.products {
			if p.ID == productID {
				c.Items = append(c.Items, entity.CartItem{Product: p, Quantity: 1, OfferPrice: offerPrice})
				return nil
			}
		}
		return errors.NotFound("product", nil)
	})
}

func (s *Session) RemoveFromCart(ctx context.Context, productID string) (entity.Cart, error) {
	return s.updateCart(ctx, func(c *entity.Cart) error {
		removeCartItem(c, productID)
		return nil
	})
}

// UpdateCartQuantity sets the quantity; zero or less removes the item.
func (s *Session) UpdateCartQuantity(ctx context.Context, productID string, quantity int) (entity.Cart, error) {
	return s.updateCart(ctx, func(c *entity.Cart) error {
		if quantity <= 0 {
			removeCartItem(c, productID)
			return nil
		}
		for i := range c.Items {
			if c.Items[i].Product.ID == productID {
				c.Items[i].Quantity = quantity
				return nil
			}
		}
		return errors.NotFound("cart item", nil)
	})
}

func (s *Session) ToggleFavorite(ctx context.Context, productID string) (entity.Cart, error) {
	return s.updateCart(ctx, func(c *entity.Cart) error {
		for i, id := range c.Favorites {
			if id == productID {
				c.Favorites = append(c.Favorites[:i:i], c.Favorites[i+1:]...)
				return nil
			}
		}
		c.Favorites = append(c.Favorites, productID)
		return nil
	})
}

func removeCartItem(c *entity.Cart, productID string) {
	items := c.Items[:0:0]
	for _, item := range c.Items {
		if item.Product.ID != productID {
			items = append(items, item)
		}
	}
	c.Items = items
}

func (s *Session) AddProduct(ctx context.Context, input AddProductInput) (*entity.Product, error) {
	p, err := s.deps.Marketplace.AddProduct(ctx, s.actor(), input)
	s.storeFailed(DomainProducts, err)
	return p, err
}

func (s *Session) AddCertificate(ctx context.Context, input AddCertificateInput) (*entity.Certificate, error) {
	c, err := s.deps.Marketplace.AddCertificate(ctx, s.actor(), input)
	s.storeFailed(DomainCertificates, err)
	return c, err
}

// GetCertificate returns nil once the session is degraded.
func (s *Session) GetCertificate(ctx context.Context, certificateID string) (*entity.Certificate, error) {
	if s.latch.Tripped() {
		logger.Warn("Live database unavailable, cannot fetch certificate %s", certificateID)
		return nil, nil
	}
	c, err := s.deps.Marketplace.GetCertificate(ctx, certificateID)
	s.storeFailed(DomainCertificates, err)
	return c, err
}

func (s *Session) CreateBargainRequest(ctx context.Context, productID string, offerPrice float64) (string, error) {
	return s.deps.Marketplace.CreateBargainRequest(ctx, s.actor(), productID, offerPrice)
}

func (s *Session) UpdateBargainRequestStatus(ctx context.Context, requestID string, status entity.BargainStatus) error {
	return s.deps.Marketplace.UpdateBargainRequestStatus(ctx, s.actor(), requestID, status)
}

func (s *Session) CompleteBargainRequest(ctx context.Context, requestID string) error {
	return s.deps.Marketplace.CompleteBargainRequest(ctx, s.actor(), requestID)
}

func (s *Session) SendConnectionRequest(ctx context.Context, receiverID string) (string, error) {
	return s.deps.Connections.SendConnectionRequest(ctx, s.actor(), receiverID)
}

func (s *Session) RespondToConnectionRequest(ctx context.Context, requestID string, status entity.ConnectionStatus) (string, error) {
	return s.deps.Connections.RespondToConnectionRequest(ctx, s.actor(), requestID, status, s.notifier)
}

func (s *Session) CreateOrSelectConversation(ctx context.Context, other ParticipantInput) (string, error) {
	return s.deps.Chat.CreateOrSelectConversation(ctx, s.actor(), other)
}

func (s *Session) SendMessage(ctx context.Context, conversationID, text string) (string, error) {
	return s.deps.Chat.SendMessage(ctx, s.actor(), conversationID, text)
}

func (s *Session) PostNewProject(ctx context.Context, input PostProjectInput) (*entity.Project, error) {
	return s.deps.Collaboration.PostNewProject(ctx, s.actor(), input)
}

func (s *Session) ApplyForProject(ctx context.Context, projectID string) (*entity.ProjectApplication, error) {
	return s.deps.Collaboration.ApplyForProject(ctx, s.actor(), projectID, s.notifier)
}

func (s *Session) RespondToApplication(ctx context.Context, applicationID string, accept bool) (*entity.Collaboration, error) {
	return s.deps.Collaboration.RespondToApplication(ctx, s.actor(), applicationID, accept, s.notifier)
}

func (s *Session) EndCollaboration(ctx context.Context, collaborationID string, input EndCollaborationInput) error {
	return s.deps.Collaboration.EndCollaboration(ctx, s.actor(), collaborationID, input, s.notifier)
}

func (s *Session) IssueCertificate(ctx context.Context, collaborationID string) (*entity.CompletedProject, error) {
	return s.deps.Collaboration.IssueCertificate(ctx, s.actor(), collaborationID, s.Locale(), s.notifier)
}
