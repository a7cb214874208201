package medialookup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"relaybot/media/jikan"
)

func sampleInfo() *jikan.MediaInfo {
	return &jikan.MediaInfo{
		Type:      "Anime",
		Title:     "Test Show",
		Synopsis:  "A show about testing.",
		Genres:    "Action, Drama",
		DateInfo:  "2020-03-27",
		Broadcast: "Fridays at 23:00 (JST)",
		Characters: []jikan.CharacterInfo{
			{Name: "Alice"},
			{Name: "Bob"},
		},
	}
}

func TestBuildReplyFixedOrder(t *testing.T) {
	reply := buildReply(sampleInfo())
	want := "Type: Anime\n" +
		"Title: Test Show\n\n" +
		"Synopsis: A show about testing.\n\n" +
		"Genres: Action, Drama\n\n" +
		"Date Info: 2020-03-27\n" +
		"Broadcast: Fridays at 23:00 (JST)\n\n" +
		"Characters:\n" +
		"- Alice\n" +
		"- Bob\n"
	assert.Equal(t, want, reply)
}

func TestBuildReplyTruncatesAtCaptionLimit(t *testing.T) {
	info := sampleInfo()
	info.Synopsis = strings.Repeat("x", 2000)
	reply := buildReply(info)
	assert.Len(t, []rune(reply), maxCaptionLength)
	assert.True(t, strings.HasSuffix(reply, "..."))
}

func TestTruncateCaptionLeavesShortTextAlone(t *testing.T) {
	assert.Equal(t, "short", truncateCaption("short"))
}

func TestSubstituteSynopsisReplacesVerbatimText(t *testing.T) {
	info := sampleInfo()
	reply := buildReply(info)
	out := substituteSynopsis(reply, info.Synopsis, "An English synopsis.")
	assert.Contains(t, out, "Synopsis: An English synopsis.")
	assert.NotContains(t, out, "A show about testing.")
}

func TestSubstituteSynopsisNoopAfterTruncation(t *testing.T) {
	info := sampleInfo()
	info.Synopsis = strings.Repeat("x", 2000)
	reply := buildReply(info)

	// The truncated reply no longer contains the full synopsis, so the
	// substitution leaves it unchanged.
	out := substituteSynopsis(reply, info.Synopsis, "translated")
	assert.Equal(t, reply, out)
}

func TestIsYes(t *testing.T) {
	for _, v := range []string{"yes", "Yes", "YES", "y", " Y "} {
		assert.True(t, isYes(v), v)
	}
	for _, v := range []string{"no", "n", "nope", "", "yeah", "si"} {
		assert.False(t, isYes(v), v)
	}
}

func TestParseSeason(t *testing.T) {
	assert.Equal(t, 2, parseSeason("2"))
	assert.Equal(t, 10, parseSeason(" 10 "))
	assert.Equal(t, 0, parseSeason("skip"))
	assert.Equal(t, 0, parseSeason("SKIP"))
	assert.Equal(t, 0, parseSeason("two"))
	assert.Equal(t, 0, parseSeason(""))
	assert.Equal(t, 0, parseSeason("-3"))
}
