package submit

import (
	"fmt"
	"strconv"
	"strings"

	"inkrelay-backend/internal/stroke"
)

// djb2 hashes a string to a compact base-36 token.
func djb2(s string) string {
	h := int32(5381)
	for i := 0; i < len(s); i++ {
		h = (h << 5) + h + int32(s[i])
	}
	if h < 0 {
		h = -h
	}
	return strconv.FormatInt(int64(h), 36)
}

// hashStrokes summarizes stroke content into a short hash. The summary
// covers each stroke's point count and endpoint coordinates, which is
// enough to tell logically different captures apart.
func hashStrokes(strokes [][]stroke.CompactPoint) string {
	parts := make([]string, len(strokes))
	for i, s := range strokes {
		if len(s) == 0 {
			parts[i] = "0"
			continue
		}
		first := s[0]
		last := s[len(s)-1]
		parts[i] = fmt.Sprintf("%d:%d:%d:%d:%d", len(s), first.X, first.Y, last.X, last.Y)
	}
	return djb2(strings.Join(parts, "|"))
}

// IdempotencyKey derives the key under which a submission is
// deduplicated. It is deterministic over client id, creation time and
// the optimized stroke content: identical input yields the same key,
// any content change yields a different one.
func IdempotencyKey(clientID, createdAt string, strokes [][]stroke.CompactPoint) string {
	return clientID + "_" + createdAt + "_" + hashStrokes(strokes)
}
