package jikan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestBestMatchPrefersExactTitle(t *testing.T) {
	results := []Media{
		{Title: "Naruto Shippuden"},
		{Title: "Naruto"},
		{Title: "Boruto: Naruto Next Generations"},
	}
	best, ok := BestMatch(results, "naruto")
	require.True(t, ok)
	assert.Equal(t, "Naruto", best.Title)
}

func TestBestMatchFallsBackToSubstring(t *testing.T) {
	results := []Media{
		{Title: "Fullmetal Alchemist"},
		{Title: "Steins;Gate 0"},
	}
	best, ok := BestMatch(results, "steins")
	require.True(t, ok)
	assert.Equal(t, "Steins;Gate 0", best.Title)
}

func TestBestMatchFallsBackToFirstResult(t *testing.T) {
	results := []Media{
		{Title: "Cowboy Bebop"},
		{Title: "Trigun"},
	}
	best, ok := BestMatch(results, "space western")
	require.True(t, ok)
	assert.Equal(t, "Cowboy Bebop", best.Title)
}

func TestBestMatchEmptyResults(t *testing.T) {
	_, ok := BestMatch(nil, "anything")
	assert.False(t, ok)
}

func TestFlattenAnimeUsesAiredAndBroadcast(t *testing.T) {
	m := Media{
		Title:     "Test Show",
		Synopsis:  "A show about testing.",
		Genres:    []Genre{{Name: "Action"}, {Name: "Drama"}},
		Aired:     DateRange{To: strPtr("2020-03-27T00:00:00+00:00")},
		Broadcast: Broadcast{String: strPtr("Fridays at 23:00 (JST)")},
		Images:    Images{JPG: ImageSet{ImageURL: "https://img.example/x.jpg"}},
	}
	info := flatten(m, TypeAnime)
	assert.Equal(t, "Anime", info.Type)
	assert.Equal(t, "Action, Drama", info.Genres)
	assert.Equal(t, "2020-03-27T00:00:00+00:00", info.DateInfo)
	assert.Equal(t, "Fridays at 23:00 (JST)", info.Broadcast)
	assert.Equal(t, "https://img.example/x.jpg", info.ImageURL)
}

func TestFlattenMangaUsesPublishedAndDefaults(t *testing.T) {
	m := Media{Title: "Test Manga"}
	info := flatten(m, TypeManga)
	assert.Equal(t, "Manga", info.Type)
	assert.Equal(t, "N/A", info.Synopsis)
	assert.Equal(t, "N/A", info.Genres)
	assert.Equal(t, "Not available", info.DateInfo)
	assert.Equal(t, "Not available", info.Broadcast)
}

func TestLookupFallsBackToManga(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/anime":
			w.Write([]byte(`{"data": []}`))
		case "/manga":
			w.Write([]byte(`{"data": [{"mal_id": 11, "title": "Berserk", "synopsis": "Dark fantasy.", "published": {"to": null}}]}`))
		case "/manga/11/characters":
			w.Write([]byte(`{"data": [{"character": {"name": "Guts", "images": {"jpg": {"image_url": "https://img.example/guts.jpg"}}}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10, srv.Client())
	info, err := c.Lookup(context.Background(), "berserk")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Manga", info.Type)
	assert.Equal(t, "Berserk", info.Title)
	require.Len(t, info.Characters, 1)
	assert.Equal(t, "Guts", info.Characters[0].Name)
	assert.Equal(t, "https://img.example/guts.jpg", info.Characters[0].ImageURL)
}

func TestLookupAnimeTierFailureStillSearchesManga(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/anime":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/manga":
			w.Write([]byte(`{"data": [{"mal_id": 11, "title": "Berserk", "synopsis": "Dark fantasy.", "published": {"to": null}}]}`))
		case "/manga/11/characters":
			w.Write([]byte(`{"data": []}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10, srv.Client())
	info, err := c.Lookup(context.Background(), "berserk")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Manga", info.Type)
	assert.Equal(t, "Berserk", info.Title)
}

func TestLookupAllTiersFailingMeansNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10, srv.Client())
	info, err := c.Lookup(context.Background(), "berserk")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestLookupNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10, srv.Client())
	info, err := c.Lookup(context.Background(), "nothing here")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestSearchNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10, srv.Client())
	_, err := c.Search(context.Background(), TypeAnime, "naruto")
	assert.Error(t, err)
}

func TestCharactersFailureDegradesToEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/anime":
			w.Write([]byte(`{"data": [{"mal_id": 5, "title": "Test Show", "synopsis": "x", "aired": {"to": null}}]}`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10, srv.Client())
	info, err := c.Lookup(context.Background(), "test show")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Empty(t, info.Characters)
}
