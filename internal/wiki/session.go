package wiki

import (
	"context"
	"fmt"
	"maps"
	"net/url"
)

// Token types understood by meta=tokens.
const (
	TokenCSRF  = "csrf"
	TokenLogin = "login"
)

// Token returns a token of the given type, fetching it on first use.
func (c *Client) Token(ctx context.Context, typ string) (string, error) {
	c.mu.Lock()
	tok, ok := c.tokens[typ]
	c.mu.Unlock()
	if ok {
		return tok, nil
	}

	var resp QueryResponse
	err := c.Get(ctx, url.Values{
		"action": {"query"},
		"meta":   {"tokens"},
		"type":   {typ},
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s token: %w", typ, err)
	}

	tok = resp.Query.Tokens[typ+"token"]
	if tok == "" {
		return "", fmt.Errorf("%w: %s", ErrNoToken, typ)
	}

	c.mu.Lock()
	c.tokens[typ] = tok
	c.mu.Unlock()
	return tok, nil
}

// DropTokens forgets cached tokens. Tokens change when the session changes.
func (c *Client) DropTokens() {
	c.mu.Lock()
	clear(c.tokens)
	c.mu.Unlock()
}

// PostWithToken posts params with a token of the given type added. The
// request is sent once; a badtoken error drops the cached token so the next
// call fetches a fresh one.
func (c *Client) PostWithToken(ctx context.Context, typ string, params url.Values, out any) error {
	tok, err := c.Token(ctx, typ)
	if err != nil {
		return err
	}

	p := make(url.Values, len(params)+1)
	maps.Copy(p, params)
	p.Set("token", tok)

	err = c.Post(ctx, p, out)
	if IsAPIErrorCode(err, "badtoken") {
		c.mu.Lock()
		delete(c.tokens, typ)
		c.mu.Unlock()
	}
	return err
}

// Login signs in with a bot password. The session cookie is kept in the
// client's cookie jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	tok, err := c.Token(ctx, TokenLogin)
	if err != nil {
		return err
	}

	var resp loginResponse
	err = c.Post(ctx, url.Values{
		"action":     {"login"},
		"lgname":     {username},
		"lgpassword": {password},
		"lgtoken":    {tok},
	}, &resp)
	c.DropTokens()
	if err != nil {
		return err
	}
	if resp.Login.Result != "Success" {
		reason := resp.Login.Reason
		if reason == "" {
			reason = resp.Login.Result
		}
		return fmt.Errorf("%w: %s", ErrLoginFailed, reason)
	}

	c.logger.Debug("logged in", "user", resp.Login.LgUsername, "id", resp.Login.LgUserID)
	return nil
}

// UserInfo returns the user the session belongs to.
func (c *Client) UserInfo(ctx context.Context) (UserInfo, error) {
	var resp QueryResponse
	err := c.Get(ctx, url.Values{
		"action": {"query"},
		"meta":   {"userinfo"},
	}, &resp)
	if err != nil {
		return UserInfo{}, err
	}
	if resp.Query.UserInfo == nil {
		return UserInfo{}, fmt.Errorf("%w: no userinfo", ErrUnexpectedResponse)
	}
	return *resp.Query.UserInfo, nil
}
