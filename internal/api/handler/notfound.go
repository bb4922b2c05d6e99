package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// fallbackPage is served when no custom 404 page is deployed.
const fallbackPage = `<!DOCTYPE html>
<html>
<head><title>404 Not Found</title></head>
<body>
<h1>404</h1>
<p>The resource you are looking for does not exist.</p>
</body>
</html>
`

// ServeNotFound is the terminal handler for missing static assets. It
// returns HTML, not the JSON envelope, and never fails further: a deployed
// public/404.html wins, otherwise the built-in page is used.
func ServeNotFound(c echo.Context, publicDir string) {
	if page, err := os.ReadFile(filepath.Join(publicDir, "404.html")); err == nil {
		_ = c.HTMLBlob(http.StatusNotFound, page)
		return
	}
	_ = c.HTML(http.StatusNotFound, fallbackPage)
}
