package wiki

// Slot is one content slot of a revision.
type Slot struct {
	ContentModel  string `json:"contentmodel"`
	ContentFormat string `json:"contentformat"`
	Content       string `json:"content"`
}

// PageRevision is a revision returned by prop=revisions.
type PageRevision struct {
	RevID     int64           `json:"revid"`
	Timestamp string          `json:"timestamp"`
	User      string          `json:"user"`
	Slots     map[string]Slot `json:"slots"`
}

// Page is one entry of query.pages.
type Page struct {
	PageID    int64          `json:"pageid"`
	NS        int            `json:"ns"`
	Title     string         `json:"title"`
	Missing   bool           `json:"missing"`
	Invalid   bool           `json:"invalid"`
	Revisions []PageRevision `json:"revisions"`
}

// MainContent returns the main slot content of the first revision.
func (p Page) MainContent() (string, bool) {
	if len(p.Revisions) == 0 {
		return "", false
	}
	slot, ok := p.Revisions[0].Slots["main"]
	if !ok {
		return "", false
	}
	return slot.Content, true
}

// UserInfo is the result of meta=userinfo.
type UserInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Anon bool   `json:"anon"`
}

// Message is one entry of meta=allmessages.
type Message struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Missing bool   `json:"missing"`
}

// QueryResponse is the body of an action=query response.
type QueryResponse struct {
	BatchComplete bool `json:"batchcomplete"`
	Query         struct {
		Pages       []Page            `json:"pages"`
		Tokens      map[string]string `json:"tokens"`
		UserInfo    *UserInfo         `json:"userinfo"`
		AllMessages []Message         `json:"allmessages"`
	} `json:"query"`
}

// Edit is the "edit" member of an action=edit response.
type Edit struct {
	Result       string `json:"result"`
	PageID       int64  `json:"pageid"`
	Title        string `json:"title"`
	ContentModel string `json:"contentmodel"`
	OldRevID     int64  `json:"oldrevid"`
	NewRevID     int64  `json:"newrevid"`
	NewTimestamp string `json:"newtimestamp"`
	NoChange     bool   `json:"nochange"`
	Watched      bool   `json:"watched"`
}

// EditResponse is the body of an action=edit response.
type EditResponse struct {
	Edit Edit `json:"edit"`
}

type loginResponse struct {
	Login struct {
		Result     string `json:"result"`
		Reason     string `json:"reason"`
		LgUserID   int64  `json:"lguserid"`
		LgUsername string `json:"lgusername"`
	} `json:"login"`
}

type parseResponse struct {
	Parse struct {
		Title  string `json:"title"`
		PageID int64  `json:"pageid"`
		RevID  int64  `json:"revid"`
		Text   string `json:"text"`
	} `json:"parse"`
}
