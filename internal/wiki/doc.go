// Package wiki is a small client for the MediaWiki Action API.
//
// It covers what citronspam needs from a wiki: reading page content,
// editing with CSRF tokens, bot password login, user info, interface
// messages, rendered HTML and purging. Every request is sent with
// format=json and formatversion=2, and an "error" member in the response is
// returned as *APIError even when the HTTP status is 200.
//
//	client, err := wiki.NewClient(wiki.EndpointFor("vi.wikipedia.org"),
//	    wiki.WithUserAgent("citronspam/1.0"),
//	    wiki.WithLogger(logger),
//	)
//	var resp wiki.QueryResponse
//	err = client.Get(ctx, url.Values{"action": {"query"}, "meta": {"userinfo"}}, &resp)
package wiki
