package batchsend

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatSize renders a byte count in the smallest fitting unit band.
// Sizes above the byte band carry exactly two decimals. Non-positive
// sizes mean the transport did not report one.
func FormatSize(size int64) string {
	if size <= 0 {
		return "Unknown"
	}
	const (
		kib = 1024
		mib = 1024 * 1024
		gib = 1024 * 1024 * 1024
	)
	switch {
	case size < kib:
		return fmt.Sprintf("%d B", size)
	case size < mib:
		return fmt.Sprintf("%.2f KB", float64(size)/kib)
	case size < gib:
		return fmt.Sprintf("%.2f MB", float64(size)/mib)
	default:
		return fmt.Sprintf("%.2f GB", float64(size)/gib)
	}
}

// FormatDuration renders seconds as MM:SS, or H:MM:SS once an hour is
// reached. Negative input yields an empty string.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		return ""
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// DeepLink builds the t.me URL for a message. The supergroup/channel
// "-100" prefix is stripped; any other chat id is used verbatim.
func DeepLink(chatID int64, messageID int) string {
	id := strconv.FormatInt(chatID, 10)
	id = strings.TrimPrefix(id, "-100")
	return fmt.Sprintf("https://t.me/c/%s/%d", id, messageID)
}
