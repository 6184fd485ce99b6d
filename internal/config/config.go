package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is used for XDG directory paths.
	AppName = "citronspam"

	// DefaultWikiID is the wiki the Citron/Spam reports were first run on.
	DefaultWikiID = "viwiki"

	// DefaultServerName is the server name of DefaultWikiID.
	DefaultServerName = "vi.wikipedia.org"

	// DefaultLanguage is the interface language for wiki messages.
	DefaultLanguage = "vi"

	// DefaultSkin decides where the launcher link is placed.
	DefaultSkin = "vector-2022"

	// DefaultTimeout bounds each API request.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the number of wikis synced at the same time.
	DefaultConcurrency = 4

	// DefaultListenAddress is the address the HTTP service binds to.
	DefaultListenAddress = "127.0.0.1:8080"

	// DefaultUserAgent follows the Wikimedia User-Agent policy.
	DefaultUserAgent = "citronspam/1.0 (https://github.com/plantaest/citronspam)"
)

// Config holds all runtime options. It is populated from defaults, the
// config file and CLI flags, then passed down explicitly.
type Config struct {
	// WikiID is the wiki database name, e.g. "viwiki".
	WikiID string

	// ServerName is the wiki host, e.g. "vi.wikipedia.org".
	ServerName string

	// ReportPrefix is the title prefix of daily report pages.
	ReportPrefix string

	// Language selects the language of interface messages.
	Language string

	// Skin is the wiki skin the user interface imitates.
	Skin string

	// Timeout bounds each API request.
	Timeout time.Duration

	// UserAgent is sent with every API request.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy in host:port form.
	ProxyAddress string

	// Username and Password are bot password credentials
	// (Special:BotPasswords). Both empty means anonymous access.
	Username string
	Password string

	// Verbose enables debug logging.
	Verbose bool

	// JSONLogs switches logs to JSON.
	JSONLogs bool

	// ConfigFilePath overrides the config file search.
	ConfigFilePath string

	// Wikis holds the parsed config file, or nil.
	Wikis *File

	// JSONReport and MarkdownReport select the output format of "show".
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the rendered report to a file instead of stdout.
	ReportFile string

	// DBDir is where the SQLite feedback store lives.
	DBDir string

	// SaveToDB stores fetched reports and synced feedback locally.
	SaveToDB bool

	// Concurrency limits how many wikis "sync" processes at once.
	Concurrency int

	// ListenAddress is used by "serve".
	ListenAddress string
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		WikiID:        DefaultWikiID,
		ServerName:    DefaultServerName,
		Language:      DefaultLanguage,
		Skin:          DefaultSkin,
		Timeout:       DefaultTimeout,
		UserAgent:     DefaultUserAgent,
		DBDir:         XDGDataDir(),
		Concurrency:   DefaultConcurrency,
		ListenAddress: DefaultListenAddress,
	}
}

// XDGDataDir returns the data directory, e.g. ~/.local/share/citronspam.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the config directory, e.g. ~/.config/citronspam.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// SelectWiki points the configuration at wiki. The argument is either a wiki
// ID from the config file or a bare server name such as "en.wikipedia.org".
// An empty argument selects the current wiki, so the file entry of the
// default wiki is applied as well.
//
// Settings of the wiki are merged over what c already holds. Use ForWiki to
// switch between wikis of one config file.
func (c *Config) SelectWiki(wiki string) error {
	if wiki == "" {
		wiki = c.WikiID
	}
	if c.Wikis != nil {
		if w, ok := c.Wikis.Wikis[wiki]; ok {
			c.WikiID = wiki
			c.applyWiki(c.Wikis.WikiConfig(wiki, w))
			return nil
		}
	}
	switch {
	case wiki == DefaultWikiID:
		c.WikiID = wiki
		c.ServerName = DefaultServerName
	case strings.Contains(wiki, "."):
		c.WikiID = wiki
		c.ServerName = wiki
	default:
		return fmt.Errorf("%w: %q", ErrUnknownWiki, wiki)
	}
	return nil
}

// ForWiki returns a copy of c pointed at wiki. The wiki settings (server
// name, report prefix, language, skin) are rebuilt from the defaults and the
// config file, so nothing of the currently selected wiki carries over. Run
// options such as Verbose or Concurrency are kept.
func (c *Config) ForWiki(wiki string) (*Config, error) {
	w := NewConfig()
	w.ApplyFile(c.Wikis)
	if err := w.SelectWiki(wiki); err != nil {
		return nil, err
	}

	out := *c
	out.WikiID = w.WikiID
	out.ServerName = w.ServerName
	out.ReportPrefix = w.ReportPrefix
	out.Language = w.Language
	out.Skin = w.Skin
	return &out, nil
}

// ApplyFile merges the config file into c. Bot credentials and defaults are
// copied; the wiki itself is chosen by SelectWiki.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.Wikis = f
	if f.Bot.Username != "" {
		c.Username = f.Bot.Username
	}
	if f.Bot.Password != "" {
		c.Password = f.Bot.Password
	}
	if f.Defaults.UserAgent != "" {
		c.UserAgent = f.Defaults.UserAgent
	}
	if f.Defaults.Proxy != "" {
		c.ProxyAddress = f.Defaults.Proxy
	}
	if f.Defaults.Timeout > 0 {
		c.Timeout = f.Defaults.Timeout
	}
	c.applyWiki(f.Defaults.WikiConfig)
}

func (c *Config) applyWiki(w WikiConfig) {
	if w.ServerName != "" {
		c.ServerName = w.ServerName
	}
	if w.ReportPrefix != "" {
		c.ReportPrefix = w.ReportPrefix
	}
	if w.Language != "" {
		c.Language = w.Language
	}
	if w.Skin != "" {
		c.Skin = w.Skin
	}
}

// Authenticated reports whether bot credentials are configured.
func (c *Config) Authenticated() bool {
	return c.Username != "" && c.Password != ""
}

// Validate returns the first configuration problem found.
func (c *Config) Validate() error {
	if c.ServerName == "" {
		return ErrNoServerName
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if (c.Username == "") != (c.Password == "") {
		return ErrIncompleteCredentials
	}
	if c.ProxyAddress != "" {
		if _, _, err := net.SplitHostPort(c.ProxyAddress); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProxyAddress, err)
		}
	}
	return nil
}
