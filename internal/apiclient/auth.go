package apiclient

import "eventscout/internal/domain"

// RegisterAuthInterceptor attaches a bearer token from the token store to
// every outgoing request that does not already carry an Authorization
// header. Call once at startup.
func RegisterAuthInterceptor(c *Client, tokens domain.TokenStore) {
	c.RegisterRequestInterceptor(func(opts *RequestOptions) error {
		token := tokens.AccessToken()
		if token == "" {
			return nil
		}
		if opts.Headers == nil {
			opts.Headers = map[string]string{}
		}
		if _, ok := opts.Headers["Authorization"]; !ok {
			opts.Headers["Authorization"] = "Bearer " + token
		}
		return nil
	})
}
