package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/template"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

const assetsDir = "assets"

type PageData struct {
	CSS string
	JS  string
	SVG string
}

// minifyFile reads an asset and minifies it as mediatype.
func minifyFile(m *minify.M, name, mediatype string) string {
	raw, err := os.ReadFile(filepath.Join(assetsDir, name))
	if err != nil {
		log.Fatalf("error read %s: %v", name, err)
	}

	out, err := m.String(mediatype, string(raw))
	if err != nil {
		log.Fatalf("error minify %s: %v", name, err)
	}

	return out
}

func main() {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)

	data := PageData{
		CSS: minifyFile(m, "style.css", "text/css"),
		JS:  minifyFile(m, "script.js", "text/javascript"),
		SVG: minifyFile(m, "favicon.svg", "image/svg+xml"),
	}

	htmlRaw, err := os.ReadFile(filepath.Join(assetsDir, "index.html.tpl"))
	if err != nil {
		log.Fatal("error read HTML:", err)
	}

	tmpl, err := template.New("index").Parse(string(htmlRaw))
	if err != nil {
		log.Fatal("error read template:", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Fatal("error parse template:", err)
	}

	finalHTML, err := m.String("text/html", buf.String())
	if err != nil {
		log.Fatal("error minify HTML:", err)
	}

	if err := os.WriteFile(filepath.Join(assetsDir, "index.html"), []byte(finalHTML), 0644); err != nil {
		log.Fatal(err)
	}

	fmt.Println("minify done")
}
