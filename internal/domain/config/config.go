package config

import (
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domainerr "prizma/internal/domain/errors"
	"prizma/internal/logger"
)

type Config struct {
	Site  SiteConfig    `yaml:"site"`
	Feed  FeedConfig    `yaml:"feed"`
	Pages PagesConfig   `yaml:"pages"`
	Build BuildConfig   `yaml:"build"`
	Cache CacheConfig   `yaml:"cache"`
	Log   logger.Config `yaml:"log"`
}

type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	SiteURL     string `yaml:"site_url"`
	Language    string `yaml:"language"`
	BasePath    string `yaml:"base_path"`
	PageSize    int    `yaml:"page_size"`

	SidebarPosts   int `yaml:"sidebar_posts"`
	SidebarTags    int `yaml:"sidebar_tags"`
	SidebarArchive int `yaml:"sidebar_archive"`
}

type FeedFormat string

const (
	FormatJSON FeedFormat = "json"
	FormatAtom FeedFormat = "atom"
)

type FeedConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	Format       FeedFormat    `yaml:"format"`
	MaxResults   int           `yaml:"max_results"`
	ExcerptLimit int           `yaml:"excerpt_limit"`
	Timeout      time.Duration `yaml:"timeout"`
}

type PageSource string

const (
	PageLocal  PageSource = "local"
	PageRemote PageSource = "remote"
)

// PageConfig maps a /view/{name} route to its content.
// Local pages read a markdown file (or a built-in one when File is empty);
// remote pages query the feed by path.
type PageConfig struct {
	Name   string     `yaml:"name"`
	Title  string     `yaml:"title"` // navigation label
	Source PageSource `yaml:"source"`
	File   string     `yaml:"file"`
	Path   string     `yaml:"path"`
	Feed   string     `yaml:"feed"` // "posts" or "pages"
}

type PagesConfig struct {
	LocalDir string       `yaml:"local_dir"`
	Items    []PageConfig `yaml:"items"`
}

type BuildConfig struct {
	PublicDir string `yaml:"public_dir"`
	ThemeDir  string `yaml:"theme_dir"`
	Theme     string `yaml:"theme"`
}

type CacheConfig struct {
	Path     string `yaml:"path"`
	Fallback bool   `yaml:"fallback"`
}

const MaxFeedResults = 500

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:          "Лична призма",
			SiteURL:        "https://www.lichna-prizma.eu",
			Language:       "bg",
			PageSize:       5,
			SidebarPosts:   6,
			SidebarTags:    5,
			SidebarArchive: 5,
		},
		Feed: FeedConfig{
			Endpoint:     "https://www.lichna-prizma.eu/",
			Format:       FormatJSON,
			MaxResults:   MaxFeedResults,
			ExcerptLimit: 150,
			Timeout:      30 * time.Second,
		},
		Pages: PagesConfig{
			Items: DefaultPages(),
		},
		Build: BuildConfig{
			PublicDir: "public",
			ThemeDir:  "themes",
			Theme:     "default",
		},
		Cache: CacheConfig{
			Path:     ".prizma/snapshot.db",
			Fallback: true,
		},
		Log: logger.Config{Level: "info"},
	}
}

func DefaultPages() []PageConfig {
	return []PageConfig{
		{Name: "privacy", Title: "Поверителност", Source: PageLocal},
		{Name: "author", Title: "За автора", Source: PageLocal},
		{Name: "contact", Title: "Контакти", Source: PageRemote, Path: "/p/blog-page.html", Feed: "pages"},
		{Name: "zumba-steps", Title: "Зумба стъпки", Source: PageRemote, Path: "/2000/08/blog-post_78.html", Feed: "posts"},
		{Name: "video-messages", Title: "Видео послания", Source: PageRemote, Path: "/2000/08/blog-post_30.html", Feed: "posts"},
		{Name: "one-more", Title: "One More International", Source: PageRemote, Path: "/2000/08/one-more-international.html", Feed: "posts"},
		{Name: "poetry", Title: "Поезия", Source: PageRemote, Path: "/2000/08/blog-post_54.html", Feed: "posts"},
	}
}

// Page returns the configured page by route name.
func (c Config) Page(name string) (PageConfig, bool) {
	for _, p := range c.Pages.Items {
		if p.Name == name {
			return p, true
		}
	}
	return PageConfig{}, false
}

var pageNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}
	if strings.TrimSpace(c.Site.SiteURL) == "" {
		ve.Add("site.site_url", "must not be empty")
	} else if !isValidAbsURL(c.Site.SiteURL) {
		ve.Add("site.site_url", "must be a valid absolute URL")
	}
	switch c.Site.Language {
	case "bg", "en":
	default:
		ve.Add("site.language", "must be 'bg' or 'en'")
	}
	if bp := strings.TrimSpace(c.Site.BasePath); bp != "" {
		if !strings.HasPrefix(bp, "/") {
			ve.Add("site.base_path", "must start with '/'")
		}
		if strings.HasSuffix(bp, "/") && bp != "/" {
			ve.Add("site.base_path", "must not end with '/'")
		}
	}
	if c.Site.PageSize <= 0 {
		ve.Add("site.page_size", "must be positive")
	}

	if strings.TrimSpace(c.Feed.Endpoint) == "" {
		ve.Add("feed.endpoint", "must not be empty")
	} else if !isValidAbsURL(c.Feed.Endpoint) {
		ve.Add("feed.endpoint", "must be a valid absolute URL")
	}
	switch c.Feed.Format {
	case "", FormatJSON, FormatAtom:
	default:
		ve.Add("feed.format", "must be 'json' or 'atom'")
	}
	if c.Feed.MaxResults <= 0 || c.Feed.MaxResults > MaxFeedResults {
		ve.Add("feed.max_results", "must be between 1 and 500")
	}
	if c.Feed.ExcerptLimit <= 1 {
		ve.Add("feed.excerpt_limit", "must be greater than 1")
	}

	seen := make(map[string]struct{}, len(c.Pages.Items))
	for _, p := range c.Pages.Items {
		field := "pages.items[" + p.Name + "]"
		if !pageNameRe.MatchString(p.Name) {
			ve.Add(field, "name must be lowercase letters, digits and '-'")
			continue
		}
		if _, dup := seen[p.Name]; dup {
			ve.Add(field, "duplicate page name")
		}
		seen[p.Name] = struct{}{}

		switch p.Source {
		case PageLocal:
		case PageRemote:
			if !strings.HasPrefix(p.Path, "/") {
				ve.Add(field, "remote path must start with '/'")
			}
			if p.Feed != "posts" && p.Feed != "pages" {
				ve.Add(field, "feed must be 'posts' or 'pages'")
			}
		default:
			ve.Add(field, "source must be 'local' or 'remote'")
		}
	}

	if strings.TrimSpace(c.Build.PublicDir) == "" {
		ve.Add("build.public_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		ve.Add("cache.path", "must not be empty")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		ve.Add("log.level", err.Error())
	}

	return ve.Err()
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return decode(cfg, data)
}

// LoadOrDefault behaves like Load but falls back to Default when the file
// does not exist.
func LoadOrDefault(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return cfg, err
	}
	return decode(cfg, data)
}

// decode overlays the file on top of defaults; fields absent from the file
// keep their default value.
func decode(cfg Config, data []byte) (Config, error) {
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Feed.Format == "" {
		cfg.Feed.Format = FormatJSON
	}
	if len(cfg.Pages.Items) == 0 {
		cfg.Pages.Items = DefaultPages()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
