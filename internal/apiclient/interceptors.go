package apiclient

// RequestInterceptor may mutate or augment request options before the
// request is sent (e.g. injecting headers).
type RequestInterceptor func(opts *RequestOptions) error

// ResponseInterceptor runs after a successful response.
type ResponseInterceptor func(resp *Response) error

// RegisterRequestInterceptor appends a request interceptor. Interceptors
// run sequentially in registration order; a later interceptor may depend
// on an earlier one's mutation. Registration happens once at startup and
// is not safe for concurrent use with in-flight requests.
func (c *Client) RegisterRequestInterceptor(i RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, i)
}

// RegisterResponseInterceptor appends a response interceptor.
func (c *Client) RegisterResponseInterceptor(i ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, i)
}

// ClearInterceptors removes all registered interceptors.
func (c *Client) ClearInterceptors() {
	c.requestInterceptors = nil
	c.responseInterceptors = nil
}

func (c *Client) runRequestInterceptors(opts *RequestOptions) error {
	for _, i := range c.requestInterceptors {
		if err := i(opts); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) runResponseInterceptors(resp *Response) error {
	for _, i := range c.responseInterceptors {
		if err := i(resp); err != nil {
			return err
		}
	}
	return nil
}
