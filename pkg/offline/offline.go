// Package offline generates the service worker that keeps the site shell
// available without a network.
package offline

import (
	"bytes"
	"encoding/json"
	"net/http"
	"text/template"
)

// CacheName names the asset cache; bump it to invalidate clients
const CacheName = "pineapple-v1"

// Assets is the fixed list of shell assets cached on install
var Assets = []string{
	"/",
	"/upload",
	"/css/style.css",
	"/js/app.js",
	"/img/placeholder.svg",
}

var workerTemplate = template.Must(template.New("sw.js").Parse(`const CACHE_NAME = {{.CacheName}};
const ASSETS = {{.Assets}};

self.addEventListener('install', (e) => {
    e.waitUntil(
        caches.open(CACHE_NAME).then((cache) => cache.addAll(ASSETS))
    );
});

self.addEventListener('fetch', (e) => {
    e.respondWith(
        caches.match(e.request).then((response) => response || fetch(e.request))
    );
});
`))

// Script renders the worker for cacheName and assets
func Script(cacheName string, assets []string) ([]byte, error) {
	name, err := json.Marshal(cacheName)
	if err != nil {
		return nil, err
	}
	list, err := json.Marshal(assets)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = workerTemplate.Execute(&buf, struct {
		CacheName string
		Assets    string
	}{string(name), string(list)})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Handler serves the worker script with the default cache and assets
func Handler() (http.HandlerFunc, error) {
	script, err := Script(CacheName, Assets)
	if err != nil {
		return nil, err
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Service-Worker-Allowed", "/")
		w.Write(script)
	}, nil
}
