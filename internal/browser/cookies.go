package browser

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/playwright-community/playwright-go"
)

// Cookie is one entry of a browser cookie export (EditThisCookie / DevTools
// "Copy all as JSON").
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// LoadCookies reads a cookie export. A missing path is not an error: the
// browser then starts without a session.
func LoadCookies(path string) ([]playwright.OptionalCookie, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read cookies")
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, errors.Wrapf(err, "parse cookies %s", path)
	}

	out := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		out = append(out, c.ToPlaywright())
	}
	return out, nil
}

func (c Cookie) ToPlaywright() playwright.OptionalCookie {
	path := c.Path
	if path == "" {
		path = "/"
	}
	pw := playwright.OptionalCookie{
		Name:   c.Name,
		Value:  c.Value,
		Domain: playwright.String(c.Domain),
		Path:   playwright.String(path),
	}

	if c.Expires > 0 {
		pw.Expires = playwright.Float(c.Expires)
	}
	if c.HTTPOnly {
		pw.HttpOnly = playwright.Bool(true)
	}
	if c.Secure {
		pw.Secure = playwright.Bool(true)
	}

	switch c.SameSite {
	case "Lax", "lax":
		pw.SameSite = playwright.SameSiteAttributeLax
	case "Strict", "strict":
		pw.SameSite = playwright.SameSiteAttributeStrict
	case "None", "none", "no_restriction":
		pw.SameSite = playwright.SameSiteAttributeNone
	}
	return pw
}
