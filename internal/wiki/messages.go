package wiki

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// LoadMessagesIfMissing fetches the interface messages in keys that are not
// cached yet, in language lang. Only requested keys are cached; keys the
// wiki does not know stay uncached.
func (c *Client) LoadMessagesIfMissing(ctx context.Context, lang string, keys ...string) error {
	c.mu.Lock()
	var missing []string
	for _, key := range keys {
		if _, ok := c.messages[key]; !ok {
			missing = append(missing, key)
		}
	}
	c.mu.Unlock()

	if len(missing) == 0 {
		return nil
	}

	params := url.Values{
		"action":     {"query"},
		"meta":       {"allmessages"},
		"ammessages": {strings.Join(missing, "|")},
	}
	if lang != "" {
		params.Set("amlang", lang)
	}

	var resp QueryResponse
	if err := c.Get(ctx, params, &resp); err != nil {
		return err
	}

	requested := make(map[string]struct{}, len(missing))
	for _, key := range missing {
		requested[key] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range resp.Query.AllMessages {
		if _, ok := requested[m.Name]; !ok || m.Missing {
			continue
		}
		c.messages[m.Name] = m.Content
	}
	return nil
}

// Message returns the cached text of key with $1, $2... replaced by args.
// Unknown keys render as ⧼key⧽.
func (c *Client) Message(key string, args ...string) string {
	c.mu.Lock()
	text, ok := c.messages[key]
	c.mu.Unlock()
	if !ok {
		return "⧼" + key + "⧽"
	}
	for i := len(args) - 1; i >= 0; i-- {
		text = strings.ReplaceAll(text, "$"+strconv.Itoa(i+1), args[i])
	}
	return text
}
