package screens

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Article is one entry in the health library.
type Article struct {
	ID       int
	Title    string
	Excerpt  string
	Author   string
	Date     string
	Category string
	ReadTime string
}

// ArticleCategories drive the category filter; "all" disables it.
var ArticleCategories = []string{
	"all", "tips", "awareness", "nutrition", "mental", "fitness", "prevention",
}

var healthArticles = []Article{
	{
		ID:       1,
		Title:    "10 Tips for a Healthier Heart",
		Excerpt:  "Small daily habits that protect your cardiovascular health over the long run.",
		Author:   "Dr. Adeyemi Okonkwo",
		Date:     "2025-06-14",
		Category: "tips",
		ReadTime: "5 min read",
	},
	{
		ID:       2,
		Title:    "Understanding Malaria Symptoms Early",
		Excerpt:  "How to recognize the warning signs of malaria and when to seek care.",
		Author:   "Dr. Ifeoma Anyanwu",
		Date:     "2025-07-02",
		Category: "awareness",
		ReadTime: "4 min read",
	},
	{
		ID:       3,
		Title:    "Eating Well on a Busy Schedule",
		Excerpt:  "Balanced nutrition ideas that survive a packed work week.",
		Author:   "Dr. Kemi Awolola",
		Date:     "2025-07-21",
		Category: "nutrition",
		ReadTime: "6 min read",
	},
	{
		ID:       4,
		Title:    "Managing Stress Before It Manages You",
		Excerpt:  "Practical techniques for keeping everyday anxiety in check.",
		Author:   "Dr. Ada Obi",
		Date:     "2025-08-05",
		Category: "mental",
		ReadTime: "7 min read",
	},
	{
		ID:       5,
		Title:    "Starting Strength Training Safely",
		Excerpt:  "A beginner's guide to building strength without injury.",
		Author:   "Dr. Samuel Okafor",
		Date:     "2025-08-18",
		Category: "fitness",
		ReadTime: "5 min read",
	},
	{
		ID:       6,
		Title:    "Vaccinations Every Adult Should Review",
		Excerpt:  "The immunizations worth checking at your next appointment.",
		Author:   "Dr. Oluseun Bello",
		Date:     "2025-08-30",
		Category: "prevention",
		ReadTime: "4 min read",
	},
}

// Articles is the health library screen: category filter, text search and
// per-user bookmarks.
type Articles struct {
	mu        sync.Mutex
	all       []Article
	category  string
	query     string
	bookmarks map[int]bool
}

// NewArticles starts with every category visible and no bookmarks.
func NewArticles() *Articles {
	return &Articles{
		all:       healthArticles,
		category:  "all",
		bookmarks: make(map[int]bool),
	}
}

// SetCategory filters by category; "all" or empty shows everything.
func (a *Articles) SetCategory(category string) {
	a.mu.Lock()
	if category == "" {
		category = "all"
	}
	a.category = category
	a.mu.Unlock()
}

// SetQuery filters by title or excerpt, case-insensitively.
func (a *Articles) SetQuery(q string) {
	a.mu.Lock()
	a.query = strings.TrimSpace(q)
	a.mu.Unlock()
}

// List returns the articles matching both active filters.
func (a *Articles) List() []Article {
	a.mu.Lock()
	defer a.mu.Unlock()

	folded := cases.Fold()
	needle := folded.String(a.query)
	var out []Article
	for _, art := range a.all {
		if a.category != "all" && art.Category != a.category {
			continue
		}
		if a.query != "" &&
			!strings.Contains(folded.String(art.Title), needle) &&
			!strings.Contains(folded.String(art.Excerpt), needle) {
			continue
		}
		out = append(out, art)
	}
	return out
}

// ToggleBookmark flips an article's bookmark and reports the new state.
func (a *Articles) ToggleBookmark(id int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bookmarks[id] {
		delete(a.bookmarks, id)
		return false
	}
	a.bookmarks[id] = true
	return true
}

// Bookmarked reports whether the article is bookmarked.
func (a *Articles) Bookmarked(id int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bookmarks[id]
}

// Bookmarks returns the bookmarked articles in library order.
func (a *Articles) Bookmarks() []Article {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []Article
	for _, art := range a.all {
		if a.bookmarks[art.ID] {
			out = append(out, art)
		}
	}
	return out
}
