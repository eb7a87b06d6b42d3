/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
)

const faviconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64">` +
	`<circle cx="32" cy="32" r="30" fill="#1f2937"/>` +
	`<path d="M12 30c6-10 34-10 40 0l-4 4H16z" fill="#f9fafb"/>` +
	`<circle cx="24" cy="40" r="6" fill="#111827" stroke="#f9fafb" stroke-width="2"/>` +
	`<circle cx="40" cy="40" r="6" fill="#111827" stroke="#f9fafb" stroke-width="2"/>` +
	`</svg>`

func getFavicon(cfg *Config) string {
	return `<link rel="icon" type="image/svg+xml" href="` + cfg.prefix + `/favicon.svg">
	<meta name="theme-color" content="#1f2937">`
}

func serveFavicon(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Content-Length", strconv.Itoa(len(faviconSVG)))
		w.Header().Set("Cache-Control", "public, max-age=86400")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(faviconSVG))
		if err != nil {
			errs <- err

			return
		}
	}
}
