// Package web provides the embedded single-page front end.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed dist/*
var staticFiles embed.FS

const indexFile = "index.html"

// RegisterStaticRoutes serves the drop zone page and its assets.
// Register the API routes first; /api/* never falls through to the page.
func RegisterStaticRoutes(e *echo.Echo) error {
	staticFS, err := fs.Sub(staticFiles, "dist")
	if err != nil {
		return err
	}
	index, err := fs.ReadFile(staticFS, indexFile)
	if err != nil {
		return fmt.Errorf("reading embedded %s: %w", indexFile, err)
	}

	assets := http.FileServer(http.FS(staticFS))

	e.GET("/*", func(c echo.Context) error {
		requestPath := path.Clean("/" + c.Request().URL.Path)
		if strings.HasPrefix(requestPath, "/api/") {
			return echo.ErrNotFound
		}

		name := strings.TrimPrefix(requestPath, "/")
		if name == "" || name == indexFile || !isAsset(staticFS, name) {
			// there is only one page; every other route renders it
			c.Response().Header().Set("Cache-Control", "no-cache")
			return c.HTMLBlob(http.StatusOK, index)
		}

		assets.ServeHTTP(c.Response(), c.Request())
		return nil
	})

	return nil
}

func isAsset(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}

// HasEmbeddedFiles reports whether index.html was built into the binary.
func HasEmbeddedFiles() bool {
	_, err := fs.Stat(staticFiles, path.Join("dist", indexFile))
	return err == nil
}
