package jikan

import (
	"context"
	"log/slog"
	"strings"

	"relaybot/core/logger"
)

// notAvailable is the placeholder for absent optional fields.
const notAvailable = "Not available"

// CharacterInfo is a character prepared for presentation.
type CharacterInfo struct {
	Name     string
	ImageURL string
}

// MediaInfo is the flattened, presentation-ready view of a lookup result.
type MediaInfo struct {
	Type       string
	Title      string
	Synopsis   string
	Genres     string
	DateInfo   string
	Broadcast  string
	ImageURL   string
	Characters []CharacterInfo
}

// Lookup searches anime first, then manga, picks the best match and
// flattens it. A nil result with nil error means nothing was found.
// A failed search tier degrades to an empty result list for that tier;
// a failed character fetch degrades to an empty character list.
func (c *Client) Lookup(ctx context.Context, query string) (*MediaInfo, error) {
	best, mediaType := c.findBest(ctx, query)
	if best == nil {
		logger.Lookup.Info("no match",
			slog.String("event", "lookup.miss"),
			slog.String("query", logger.SanitizeLimit(query, 128)),
		)
		return nil, nil
	}

	info := flatten(*best, mediaType)

	if best.MalID != 0 {
		entries, err := c.Characters(ctx, mediaType, best.MalID)
		if err != nil {
			logger.Lookup.Warn("characters fetch failed",
				slog.String("event", "lookup.characters"),
				slog.String("media_type", string(mediaType)),
				slog.String("title", logger.SanitizeLimit(info.Title, 128)),
				slog.String("err", err.Error()),
			)
		}
		for _, e := range entries {
			name := e.Character.Name
			if name == "" {
				name = "N/A"
			}
			info.Characters = append(info.Characters, CharacterInfo{
				Name:     name,
				ImageURL: e.Character.Images.JPG.ImageURL,
			})
		}
	}

	return info, nil
}

func (c *Client) findBest(ctx context.Context, query string) (*Media, MediaType) {
	for _, mediaType := range []MediaType{TypeAnime, TypeManga} {
		results, err := c.Search(ctx, mediaType, query)
		if err != nil {
			logger.Lookup.Warn("search tier failed",
				slog.String("event", "lookup.search.fail"),
				slog.String("media_type", string(mediaType)),
				slog.String("query", logger.SanitizeLimit(query, 128)),
				slog.String("err", err.Error()),
			)
			continue
		}
		if best, ok := BestMatch(results, query); ok {
			return &best, mediaType
		}
	}
	return nil, ""
}

func flatten(m Media, mediaType MediaType) *MediaInfo {
	title := m.Title
	if title == "" {
		title = "N/A"
	}
	synopsis := m.Synopsis
	if synopsis == "" {
		synopsis = "N/A"
	}

	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		if g.Name != "" {
			names = append(names, g.Name)
		}
	}
	genres := "N/A"
	if len(names) > 0 {
		genres = strings.Join(names, ", ")
	}

	dateInfo := notAvailable
	broadcast := notAvailable
	if mediaType == TypeAnime {
		if m.Aired.To != nil && *m.Aired.To != "" {
			dateInfo = *m.Aired.To
		}
		if m.Broadcast.String != nil && *m.Broadcast.String != "" {
			broadcast = *m.Broadcast.String
		}
	} else {
		if m.Published.To != nil && *m.Published.To != "" {
			dateInfo = *m.Published.To
		}
	}

	return &MediaInfo{
		Type:      mediaType.Label(),
		Title:     title,
		Synopsis:  synopsis,
		Genres:    genres,
		DateInfo:  dateInfo,
		Broadcast: broadcast,
		ImageURL:  m.Images.JPG.ImageURL,
	}
}
