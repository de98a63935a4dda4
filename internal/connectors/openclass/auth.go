package openclass

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/logger"
)

// Authenticate logs in with the configured credentials and stores the token.
func (c *Client) Authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("email", c.cfg.Email)
	form.Set("password", c.cfg.Password)
	form.Set("invite_code", "")
	form.Set("instructor_invite_code", "")
	form.Set("mentor_invite_code", "")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/v1/auth/login"),
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: build login request: %w", domain.ErrAuth, err)
	}
	c.setCommonHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	env, err := c.do(req, "login")
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAuth, err)
	}
	if env.Result.Token == "" {
		return fmt.Errorf("%w: %w", domain.ErrAuth, ErrNoToken)
	}

	c.mu.Lock()
	c.token = env.Result.Token
	c.mu.Unlock()

	logger.Debug("openclass: authenticated as %s", c.cfg.Email)
	return nil
}
