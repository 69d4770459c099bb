package web

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ogKeys is the canonical parameter order for the preview page.
var ogKeys = [...]string{"title", "type", "url", "image", "description"}

// OpenGraphShow renders a page whose only content is the Open-Graph
// meta tags built from the query parameters. Parameters present with
// an empty value are dropped through a permanent redirect so every
// preview has one canonical URL; with no parameters at all the
// explainer page renders instead.
func (h *Controller) OpenGraphShow(c *fiber.Ctx) error {
	args := c.Context().QueryArgs()

	values := map[string]string{}
	modified := false
	for _, key := range ogKeys {
		if !args.Has(key) {
			continue
		}
		value := c.Query(key)
		if value == "" {
			modified = true
			continue
		}
		values[key] = value
	}

	if modified {
		return c.Redirect(h.Routes.OpenGraph+canonicalOgQuery(values), fiber.StatusMovedPermanently)
	}

	if len(values) == 0 {
		return c.Render(h.Views.OpenGraph+"_empty", fiber.Map{})
	}

	data := fiber.Map{}
	for key, value := range values {
		data[key] = value
	}
	return c.Render(h.Views.OpenGraph, data)
}

func canonicalOgQuery(values map[string]string) string {
	var parts []string
	for _, key := range ogKeys {
		if value, ok := values[key]; ok {
			parts = append(parts, key+"="+url.QueryEscape(value))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}
