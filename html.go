/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"embed"
	"fmt"
	"html"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

//go:embed assets/*
var assets embed.FS

func pageHead(cfg *Config, title string) string {
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.WriteString(getFavicon(cfg))
	b.WriteString(fmt.Sprintf(`<link rel="stylesheet" href="%s/assets/spyfall/app.css">`, cfg.prefix))
	b.WriteString(fmt.Sprintf("<title>%s</title></head>", html.EscapeString(title)))

	return b.String()
}

func homePage(cfg *Config) string {
	var b strings.Builder

	b.WriteString(pageHead(cfg, "Spyfall"))
	b.WriteString(fmt.Sprintf(`<body data-prefix="%s" data-page="home"><main>`, html.EscapeString(cfg.prefix)))
	b.WriteString(`<h1>Spyfall</h1>`)
	b.WriteString(`<form id="create"><h2>New room</h2>`)
	b.WriteString(`<input name="name" placeholder="Your name" autocomplete="off" required>`)
	b.WriteString(`<button type="submit">Create</button></form>`)
	b.WriteString(`<form id="join"><h2>Join room</h2>`)
	b.WriteString(`<input name="name" placeholder="Your name" autocomplete="off" required>`)
	b.WriteString(`<input name="code" placeholder="Code" maxlength="4" autocomplete="off" required>`)
	b.WriteString(`<button type="submit">Join</button></form>`)
	b.WriteString(`<p id="error" class="error" hidden></p>`)
	b.WriteString(fmt.Sprintf(`</main><script src="%s/assets/spyfall/app.js"></script></body></html>`, cfg.prefix))

	return b.String()
}

func roomPage(cfg *Config, code string) string {
	var b strings.Builder

	code = html.EscapeString(code)

	b.WriteString(pageHead(cfg, "Spyfall | "+code))
	b.WriteString(fmt.Sprintf(`<body data-prefix="%s" data-page="room" data-code="%s"><main>`, html.EscapeString(cfg.prefix), code))
	b.WriteString(fmt.Sprintf(`<h1>Room <span class="code">%s</span></h1>`, code))
	b.WriteString(fmt.Sprintf(`<img class="qr" alt="QR code for this room" src="%s/room/%s/qr">`, cfg.prefix, code))
	b.WriteString(`<section id="roster"><h2>Players</h2><ul id="players"></ul></section>`)
	b.WriteString(`<section id="owner" hidden><label>Round length (minutes) <input id="duration" type="number" min="1" max="60"></label>`)
	b.WriteString(`<button id="start">Start round</button><button id="end">End round</button></section>`)
	b.WriteString(`<section id="role" hidden><h2 id="location"></h2><p id="occupation"></p><p id="timer" class="timer"></p></section>`)
	b.WriteString(`<section id="reveal" hidden></section>`)
	b.WriteString(`<button id="leave">Leave room</button>`)
	b.WriteString(`<p id="error" class="error" hidden></p>`)
	b.WriteString(fmt.Sprintf(`</main><script src="%s/assets/spyfall/app.js"></script></body></html>`, cfg.prefix))

	return b.String()
}

func writeHTML(cfg *Config, w http.ResponseWriter, status int, body string) (int, error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	return w.Write([]byte(body))
}

func serveHomePage(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if _, err := writeHTML(cfg, w, http.StatusOK, homePage(cfg)); err != nil {
			errs <- err
		}
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveAssets(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		fname := "assets/" + strings.TrimPrefix(p.ByName("asset"), "/")

		data, err := assets.ReadFile(fname)
		if err != nil {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		switch strings.ToLower(filepath.Ext(fname)) {
		case ".css":
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		case ".js":
			w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		}

		_, err = w.Write(data)
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: *
Disallow: /room/`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}
