package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Locale carries the user-visible strings and date names of one language.
type Locale struct {
	Lang       string
	Months     [12]string
	YearSuffix string

	ReadMore       string
	Prev           string
	Next           string
	Back           string
	Published      string
	Topics         string
	TagHeading     string
	ArchiveHeading string
	Comments       string
	Share          string
	ShareFallback  string
	Email          string
	ShowAll        string
	ShowLess       string
	Latest         string
	TagsTitle      string
	ArchiveTitle   string
	AuthorPrefix   string
	Pagination     string
	MarkdownLink   string

	PostNotFound string
	PageNotFound string
	NoTagPosts   string // %s is the tag
	NoPosts      string
	LoadError    string
	PageError    string
}

var bg = Locale{
	Lang: "bg",
	Months: [12]string{
		"януари", "февруари", "март", "април", "май", "юни",
		"юли", "август", "септември", "октомври", "ноември", "декември",
	},
	YearSuffix: " г.",

	ReadMore:       "Прочети →",
	Prev:           "← Предишни",
	Next:           "Следващи →",
	Back:           "← Към началото",
	Published:      "Публикувано:",
	Topics:         "Теми:",
	TagHeading:     "Тема:",
	ArchiveHeading: "Архив:",
	Comments:       "Коментари",
	Share:          "Сподели",
	ShareFallback:  "Функцията за споделяне не се поддържа от този браузър. Моля, използвайте бутоните за социални мрежи.",
	Email:          "Имейл",
	ShowAll:        "Покажи всички",
	ShowLess:       "Покажи по-малко",
	Latest:         "Последни публикации",
	TagsTitle:      "Теми",
	ArchiveTitle:   "Архив",
	AuthorPrefix:   "Автор:",
	Pagination:     "Навигация между страници",
	MarkdownLink:   "Markdown",

	PostNotFound: "Статията не е намерена.",
	PageNotFound: "Страницата не е намерена.",
	NoTagPosts:   "Няма публикации с тема „%s“.",
	NoPosts:      "Все още няма публикации.",
	LoadError:    "Възникна грешка при зареждане на съдържанието. Моля, опитайте по-късно.",
	PageError:    "Възникна грешка при зареждане на съдържанието или страницата е празна.",
}

var en = Locale{
	Lang: "en",
	Months: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},

	ReadMore:       "Read →",
	Prev:           "← Newer",
	Next:           "Older →",
	Back:           "← Home",
	Published:      "Published:",
	Topics:         "Topics:",
	TagHeading:     "Topic:",
	ArchiveHeading: "Archive:",
	Comments:       "Comments",
	Share:          "Share",
	ShareFallback:  "Sharing is not supported by this browser. Please use the social buttons.",
	Email:          "Email",
	ShowAll:        "Show all",
	ShowLess:       "Show less",
	Latest:         "Latest posts",
	TagsTitle:      "Topics",
	ArchiveTitle:   "Archive",
	AuthorPrefix:   "Author:",
	Pagination:     "Pagination",
	MarkdownLink:   "Markdown",

	PostNotFound: "Post not found.",
	PageNotFound: "Page not found.",
	NoTagPosts:   "No posts tagged “%s”.",
	NoPosts:      "No posts yet.",
	LoadError:    "Something went wrong while loading the content. Please try again later.",
	PageError:    "The page could not be loaded or is empty.",
}

// LocaleFor returns the locale for lang, defaulting to Bulgarian.
func LocaleFor(lang string) Locale {
	if strings.EqualFold(lang, "en") {
		return en
	}
	return bg
}

// FormatDate renders a YYYY-MM-DD date as "05 януари 2024 г.". Input that
// does not parse is returned as is.
func (l Locale) FormatDate(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%02d %s %d%s", t.Day(), l.Months[t.Month()-1], t.Year(), l.YearSuffix)
}

// FormatMonth renders a YYYY-MM bucket as "януари 2024 г.".
func (l Locale) FormatMonth(ym string) string {
	year, month, ok := strings.Cut(ym, "-")
	if !ok {
		return ym
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return ym
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return ym
	}
	return fmt.Sprintf("%s %d%s", l.Months[m-1], y, l.YearSuffix)
}

func (l Locale) NoTagPostsFor(tag string) string {
	return fmt.Sprintf(l.NoTagPosts, tag)
}
