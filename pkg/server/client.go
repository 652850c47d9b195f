package server

import (
	_ "embed"
	"net/http"

	"github.com/vango-dev/dragsort/pkg/dom"
)

// ClientPath is where the thin client script is served.
const ClientPath = "/_dragsort/client.js"

// ClientJS is the browser client. It forwards pointer events over /ws and
// applies the signals and snapshots the board sends back.
//
//go:embed client.js
var ClientJS []byte

// injectClient appends the client script tag to the page body.
func injectClient(page *dom.Document) error {
	body := page.Body()
	if body == nil {
		return nil
	}
	script := page.CreateElement("script")
	script.SetAttr("src", ClientPath)
	script.SetAttr("defer", "")
	return body.AppendChild(script)
}

func (s *Server) handleClient(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(ClientJS)
}
