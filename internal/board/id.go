package board

import (
	"strconv"
	"strings"

	"github.com/starford/tavla/internal/models"
)

// NextCardID returns the next unused card id for the board: the maximum
// over all integer-parseable ids plus one, or "1" when the board has no
// numeric ids at all. Non-numeric ids are ignored.
func NextCardID(b models.Board) string {
	var max int64
	found := false
	for _, c := range b.AllCards() {
		n, err := strconv.ParseInt(strings.TrimSpace(c.ID), 10, 64)
		if err != nil {
			continue
		}
		if !found || n > max {
			max = n
			found = true
		}
	}
	if !found {
		return "1"
	}
	return strconv.FormatInt(max+1, 10)
}
