package batchsend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSizeBands(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{0, "Unknown"},
		{-1, "Unknown"},
		{1, "1 B"},
		{1023, "1023 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024*1024 - 1, "1024.00 KB"},
		{1024 * 1024, "1.00 MB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatSize(tc.size), "size %d", tc.size)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{60, "01:00"},
		{61, "01:01"},
		{3599, "59:59"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{7325, "02:02:05"},
		{-5, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDuration(tc.seconds), "seconds %d", tc.seconds)
	}
}

func TestDeepLinkStripsSupergroupPrefix(t *testing.T) {
	assert.Equal(t, "https://t.me/c/1234567890/42", DeepLink(-1001234567890, 42))
}

func TestDeepLinkKeepsOtherIDs(t *testing.T) {
	assert.Equal(t, "https://t.me/c/-987654/7", DeepLink(-987654, 7))
	assert.Equal(t, "https://t.me/c/555/7", DeepLink(555, 7))
}
