package web

import (
	"sort"

	"github.com/gofiber/fiber/v2"
)

// NicknameMatch returns the dictionary words contained in the caller's
// username or nickname: the aliases that would ping them. The response
// is a bare JSON array, matching what the page script consumes.
func (h *Controller) NicknameMatch(c *fiber.Ctx) error {
	username := c.Query("username")
	nickname := c.Query("nickname")

	if len(username) < 3 {
		return fiber.ErrBadRequest
	}

	seen := map[string]struct{}{}
	for _, w := range h.Matcher.Match(username) {
		seen[w] = struct{}{}
	}
	if nickname != "" {
		for _, w := range h.Matcher.Match(nickname) {
			seen[w] = struct{}{}
		}
	}

	words := make([]string, 0, len(seen))
	for w := range seen {
		words = append(words, w)
	}
	sort.Strings(words)

	return c.JSON(words)
}
