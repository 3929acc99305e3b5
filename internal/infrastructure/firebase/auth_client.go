package firebase

import (
	"context"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"

	"artisanx/internal/domain/entity"
	apperrors "artisanx/pkg/errors"
	"artisanx/pkg/logger"
)

// adminAuth is the part of the Admin SDK auth client the provider uses.
type adminAuth interface {
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthClient is the Firebase identity provider. Password and federated
// sign-in go through the Identity Toolkit REST API because the Admin SDK
// cannot check credentials; profile edits and revocation use the Admin SDK.
type AuthClient struct {
	admin   adminAuth
	toolkit *toolkitClient
}

func NewAuthClient(client *auth.Client, apiKey string) *AuthClient {
	var admin adminAuth
	if client != nil {
		admin = client
	}
	return &AuthClient{
		admin:   admin,
		toolkit: newToolkitClient(identityToolkitURL, apiKey),
	}
}

func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*entity.Identity, error) {
	resp, err := a.toolkit.call(ctx, "accounts:signInWithPassword", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}
	return resp.identity(), nil
}

// SignInWithProvider exchanges a federated credential, such as a Google ID
// token, for a Firebase identity.
func (a *AuthClient) SignInWithProvider(ctx context.Context, providerID, credential string) (*entity.Identity, error) {
	if providerID == "" || credential == "" {
		return nil, apperrors.BadRequest("provider and credential are required", nil)
	}
	resp, err := a.toolkit.call(ctx, "accounts:signInWithIdp", map[string]interface{}{
		"postBody":            "id_token=" + credential + "&providerId=" + providerID,
		"requestUri":          "http://localhost",
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	})
	if err != nil {
		return nil, err
	}
	return resp.identity(), nil
}

func (a *AuthClient) CreateIdentity(ctx context.Context, email, password string) (*entity.Identity, error) {
	resp, err := a.toolkit.call(ctx, "accounts:signUp", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Created identity %s", resp.LocalID)
	return resp.identity(), nil
}

func (a *AuthClient) UpdateDisplayName(ctx context.Context, uid, name string) error {
	if a.admin == nil {
		return apperrors.New("IDENTITY_UNAVAILABLE", "Admin SDK is not configured", http.StatusServiceUnavailable, nil)
	}
	params := (&auth.UserToUpdate{}).DisplayName(name)
	if _, err := a.admin.UpdateUser(ctx, uid, params); err != nil {
		return errors.Wrapf(err, "update display name of %s", uid)
	}
	return nil
}

// SignOut revokes the refresh tokens of uid so other devices are signed out
// on their next refresh.
func (a *AuthClient) SignOut(ctx context.Context, uid string) error {
	if a.admin == nil {
		return nil
	}
	if err := a.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		return errors.Wrapf(err, "revoke refresh tokens of %s", uid)
	}
	return nil
}

// VerifyToken checks a Firebase ID token and returns its uid.
func (a *AuthClient) VerifyToken(ctx context.Context, idToken string) (string, error) {
	if a.admin == nil {
		return "", apperrors.Unauthorized("token verification is not configured", nil)
	}
	token, err := a.admin.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", apperrors.Unauthorized("invalid token", err)
	}
	return token.UID, nil
}
