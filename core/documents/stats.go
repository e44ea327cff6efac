package documents

import (
	"math"
	"strconv"
)

// Stats summarizes a collection of documents.
type Stats struct {
	Total      int      `json:"total"`
	TotalSize  int64    `json:"totalSize"`
	Categories []string `json:"categories"`
}

// Summarize counts docs, adds up their sizes and lists the distinct
// categories in first-seen order.
func Summarize(docs []Document) Stats {
	stats := Stats{Categories: []string{}}
	seen := map[string]struct{}{}
	for _, d := range docs {
		stats.Total++
		stats.TotalSize += d.FileSize
		if _, ok := seen[d.Category]; !ok {
			seen[d.Category] = struct{}{}
			stats.Categories = append(stats.Categories, d.Category)
		}
	}
	return stats
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders bytes with a 1024 base and at most two decimals,
// e.g. 2048576 -> "1.95 MB". Sizes past GB stay in GB.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := 0
	for i < len(sizeUnits)-1 && bytes >= int64(1)<<(10*(i+1)) {
		i++
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}
