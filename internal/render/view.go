package render

import (
	"html/template"
	"time"

	"prizma/internal/domain/config"
)

type AuthorCard struct {
	Name   string
	Avatar string
}

type NavItem struct {
	Title string
	Link  string
}

type MiniPost struct {
	Title string
	Link  string
	Thumb string
	Date  string
}

type TagItem struct {
	Name   string
	Link   string
	Count  int
	Hidden bool
}

type MonthItem struct {
	Label  string
	Link   string
	Count  int
	Hidden bool
}

// Layout is the frame shared by every page: head, navigation and sidebar.
type Layout struct {
	Site      config.SiteConfig
	L         Locale
	Title     string
	Canonical string
	Home      string
	CSS       string
	JS        string
	Nav       []NavItem
	Generated time.Time

	Author     AuthorCard
	Latest     []MiniPost
	TagCloud   []TagItem
	TagTotal   int
	MoreTags   bool
	Months     []MonthItem
	MonthTotal int
	MoreMonths bool
}

type TagLink struct {
	Name string
	Link string
}

type Card struct {
	ID      string
	Title   string
	Link    string
	Cover   string
	Date    string
	Excerpt string
	Tags    []TagLink
}

type ListPage struct {
	Layout
	Heading string
	Cards   []Card
	Pager   Pager
	Page    int
	Pages   int
	Total   int
}

type PostPage struct {
	Layout
	ID       string
	Heading  string
	Hero     string
	Date     string
	Tags     []TagLink
	HTML     template.HTML
	Share    Share
	Markdown string
}

type StaticPage struct {
	Layout
	Name    string
	Heading string
	HTML    template.HTML
}

type MessagePage struct {
	Layout
	Message string
	Status  int
}
