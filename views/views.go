// Package views embeds the HTML templates rendered by the gallery and admin pages.
package views

import (
	"embed"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed */*.html
var FS embed.FS

// NewEngine returns a template engine over the embedded templates.
func NewEngine() *html.Engine {
	return html.NewFileSystem(http.FS(FS), ".html")
}
