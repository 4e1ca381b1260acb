package screens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticlesDefaultsShowEverything(t *testing.T) {
	a := NewArticles()
	assert.Len(t, a.List(), 6)
	assert.Len(t, ArticleCategories, 7)
}

func TestArticlesCategoryFilter(t *testing.T) {
	a := NewArticles()
	a.SetCategory("mental")
	list := a.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Managing Stress Before It Manages You", list[0].Title)

	a.SetCategory("all")
	assert.Len(t, a.List(), 6)
}

func TestArticlesQueryMatchesTitleOrExcerpt(t *testing.T) {
	a := NewArticles()

	a.SetQuery("MALARIA")
	list := a.List()
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].ID)

	// Excerpt text matches too.
	a.SetQuery("without injury")
	list = a.List()
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].ID)
}

func TestArticlesFiltersCombine(t *testing.T) {
	a := NewArticles()
	a.SetCategory("nutrition")
	a.SetQuery("heart")
	assert.Empty(t, a.List(), "query and category must both hold")

	a.SetCategory("tips")
	require.Len(t, a.List(), 1)
}

func TestArticlesBookmarkToggle(t *testing.T) {
	a := NewArticles()
	assert.True(t, a.ToggleBookmark(3))
	assert.True(t, a.Bookmarked(3))
	assert.True(t, a.ToggleBookmark(1))

	marked := a.Bookmarks()
	require.Len(t, marked, 2)
	// Library order, not toggle order.
	assert.Equal(t, 1, marked[0].ID)
	assert.Equal(t, 3, marked[1].ID)

	assert.False(t, a.ToggleBookmark(3))
	assert.False(t, a.Bookmarked(3))
	assert.Len(t, a.Bookmarks(), 1)
}
