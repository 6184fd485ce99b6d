package wiki

import (
	"context"
	"fmt"
	"net/url"
)

// Revisions fetches the latest revision content of title with all slots.
func (c *Client) Revisions(ctx context.Context, title string) (Page, error) {
	var resp QueryResponse
	err := c.Get(ctx, url.Values{
		"action":  {"query"},
		"prop":    {"revisions"},
		"rvslots": {"*"},
		"rvprop":  {"content"},
		"titles":  {title},
	}, &resp)
	if err != nil {
		return Page{}, err
	}
	if len(resp.Query.Pages) == 0 {
		return Page{}, fmt.Errorf("%w: no pages for %q", ErrUnexpectedResponse, title)
	}
	return resp.Query.Pages[0], nil
}

// ParsePage returns the rendered HTML of title.
func (c *Client) ParsePage(ctx context.Context, title string) (string, error) {
	var resp parseResponse
	err := c.Get(ctx, url.Values{
		"action":             {"parse"},
		"page":               {title},
		"prop":               {"text"},
		"disablelimitreport": {"1"},
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Parse.Text, nil
}
