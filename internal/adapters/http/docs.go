package http

import (
	"bytes"
	"html/template"
	"os"

	"github.com/gofiber/fiber/v2"
	"gopkg.in/yaml.v3"
)

// DefaultSpecPath is where the OpenAPI document lives relative to the
// working directory.
const DefaultSpecPath = "api/openapi.yaml"

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}} {{.Version}}: reference</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
  <style>
    body{margin:0;background:#fafafa;font-family:sans-serif}
    header{padding:12px 24px;background:#fff;border-bottom:4px solid #CE7816}
    header p{margin:4px 0 0;color:#555;max-width:60em}
  </style>
</head>
<body>
  <header>
    <strong>{{.Title}}</strong> {{.Version}} &middot; <a href="/">map</a>
    {{with .Description}}<p>{{.}}</p>{{end}}
  </header>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: '/docs/openapi.yaml', dom_id: '#swagger-ui', deepLinking: true});
  </script>
</body>
</html>`))

// apiInfo is the info block of the OpenAPI document.
type apiInfo struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// SetupDocs serves the API reference at /docs, titled from the document's
// info block, and the raw document at /docs/openapi.yaml. The document is
// read once; when it is missing both routes answer 404.
func SetupDocs(app *fiber.App, specPath string) {
	spec, err := os.ReadFile(specPath)
	if err != nil {
		missing := func(c *fiber.Ctx) error { return errNotFound(c, "openapi.yaml not found") }
		app.Get("/docs", missing)
		app.Get("/docs/openapi.yaml", missing)
		return
	}

	var doc struct {
		Info apiInfo `yaml:"info"`
	}
	if err := yaml.Unmarshal(spec, &doc); err != nil || doc.Info.Title == "" {
		doc.Info.Title = "WasteAtlas API"
	}
	var page bytes.Buffer
	if err := docsPage.Execute(&page, doc.Info); err != nil {
		panic(err)
	}

	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(page.Bytes())
	})
	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(spec)
	})
}
