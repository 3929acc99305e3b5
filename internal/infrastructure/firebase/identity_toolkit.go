package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"artisanx/internal/domain/entity"
	apperrors "artisanx/pkg/errors"
	"artisanx/pkg/logger"
)

const identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

type toolkitClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func newToolkitClient(baseURL, apiKey string) *toolkitClient {
	return &toolkitClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type toolkitResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	FullName     string `json:"fullName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

func (r *toolkitResponse) identity() *entity.Identity {
	name := r.DisplayName
	if name == "" {
		name = r.FullName
	}
	return &entity.Identity{
		UID:          r.LocalID,
		Email:        r.Email,
		DisplayName:  name,
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
	}
}

type toolkitError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *toolkitClient) call(ctx context.Context, method string, payload interface{}) (*toolkitResponse, error) {
	if c.apiKey == "" {
		return nil, apperrors.New("IDENTITY_UNAVAILABLE", "Firebase API key is not configured", http.StatusServiceUnavailable, nil)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}
	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, method, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "call %s", method)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		var te toolkitError
		_ = json.Unmarshal(raw, &te)
		logger.Warn("Identity toolkit %s failed: %d %s", method, resp.StatusCode, te.Error.Message)
		return nil, mapToolkitError(te.Error.Message)
	}

	var out toolkitResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "parse response")
	}
	return &out, nil
}

// mapToolkitError turns an Identity Toolkit error code into an AppError.
// Codes may carry a suffix such as "TOO_MANY_ATTEMPTS_TRY_LATER : ...".
func mapToolkitError(message string) error {
	code := message
	for i := 0; i < len(message); i++ {
		if message[i] == ' ' || message[i] == ':' {
			code = message[:i]
			break
		}
	}

	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED", "INVALID_IDP_RESPONSE":
		return apperrors.Unauthorized("Invalid credentials", nil)
	case "EMAIL_EXISTS":
		return apperrors.Conflict("An account with this email already exists")
	case "WEAK_PASSWORD", "INVALID_EMAIL", "MISSING_PASSWORD", "MISSING_EMAIL":
		return apperrors.BadRequest(code, nil)
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return apperrors.TooManyRequests("Too many attempts, try again later", time.Minute)
	}
	return apperrors.Internal("identity provider error", errors.New(message))
}
