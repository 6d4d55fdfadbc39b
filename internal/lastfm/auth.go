package lastfm

import "fmt"

// GetToken requests an authentication token for the desktop auth flow.
func (c *Client) GetToken() (string, error) {
	token, err := c.api.GetToken()
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return token, nil
}

// AuthURL returns the URL the user must visit to authorize the token.
func (c *Client) AuthURL(token string) string {
	return fmt.Sprintf("https://www.last.fm/api/auth/?api_key=%s&token=%s", c.apiKey, token)
}

// GetSession exchanges an authorized token for a session key.
func (c *Client) GetSession(token string) (username, sessionKey string, err error) {
	if err := c.api.LoginWithToken(token); err != nil {
		return "", "", fmt.Errorf("get session: %w", err)
	}

	sessionKey = c.api.GetSessionKey()

	userInfo, err := c.api.User.GetInfo(nil)
	if err != nil {
		// session is valid, username is optional
		return "unknown", sessionKey, nil //nolint:nilerr
	}
	return userInfo.Name, sessionKey, nil
}
