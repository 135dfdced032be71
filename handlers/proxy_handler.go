package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/clubratings/club-ratings/besoccer"
	"github.com/clubratings/club-ratings/scrape"
)

// allowedProxyHosts — единственные апстримы, которые разрешено проксировать.
var allowedProxyHosts = []string{
	"sofascore.com",
	"besoccer.com",
}

// ProxyHandler пробрасывает запросы фронтенда к внешним источникам, которые
// блокируют браузерные запросы. Поддерживает action=findLastMatch для страниц
// календаря BeSoccer.
type ProxyHandler struct {
	fetcher *scrape.Fetcher
}

func NewProxyHandler(fetcher *scrape.Fetcher) *ProxyHandler {
	return &ProxyHandler{fetcher: fetcher}
}

func (h *ProxyHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		badRequestResponse(w, r, errors.New("missing required query parameter: url"))
		return
	}

	target, err := url.Parse(rawURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		badRequestResponse(w, r, fmt.Errorf("invalid url parameter: %q", rawURL))
		return
	}
	if !hostAllowed(target.Host) {
		forbiddenResponse(w, r, fmt.Sprintf("host %q is not allowed", target.Host))
		return
	}

	res, err := h.fetcher.Fetch(r.Context(), target.String())
	if err != nil {
		upstreamFailureResponse(w, r, err)
		return
	}

	if r.URL.Query().Get("action") == "findLastMatch" {
		h.findLastMatch(w, r, res.Body, target)
		return
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Body); err != nil {
		slogWriteError(r, err)
	}
}

func (h *ProxyHandler) findLastMatch(w http.ResponseWriter, r *http.Request, body []byte, target *url.URL) {
	fixtures, err := besoccer.FinishedFixtures(body, target.Scheme+"://"+target.Host)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	matches := make([]jsonResponse, 0, len(fixtures))
	for _, u := range fixtures {
		matches = append(matches, jsonResponse{"url": u})
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func hostAllowed(host string) bool {
	host = strings.ToLower(host)
	for _, allowed := range allowedProxyHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
