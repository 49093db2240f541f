// Package surface opens embedded YouTube players and delivers playback commands to them.
package surface

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/CrestNiraj12/clipflow/engine/playback"
)

// commandMessage is the postMessage body the YouTube iframe API accepts.
type commandMessage struct {
	Event string `json:"event"`
	Func  string `json:"func"`
	Args  []any  `json:"args"`
}

func encodeCommand(cmd playback.Command) ([]byte, error) {
	t := cmd.Tuple()
	return json.Marshal(commandMessage{Event: "command", Func: t.Func, Args: t.Args})
}

const loadedBinding = "clipflowLoaded"

// hostPage wraps the player iframe. The iframe's load event calls the runtime binding.
func hostPage(playerURL string) string {
	return fmt.Sprintf(`<!doctype html>
<html><head><meta charset="utf-8"><title>clipflow</title>
<style>html,body{margin:0;height:100%%;background:#000}iframe{border:0;width:100%%;height:100%%}</style>
</head><body>
<iframe id="player" src=%q allow="autoplay; encrypted-media; picture-in-picture"
 onload="window.%s && window.%s('loaded')"></iframe>
</body></html>`, playerURL, loadedBinding, loadedBinding)
}

// dataURL percent-encodes html; spaces become %20, never '+'.
func dataURL(html string) string {
	return "data:text/html;charset=utf-8," + url.PathEscape(html)
}

// postMessageJS posts msg as a JSON string, the form the iframe API's own widget sends.
func postMessageJS(msg []byte) string {
	return fmt.Sprintf(`(function(){
var f = document.getElementById('player');
if (!f || !f.contentWindow) return false;
f.contentWindow.postMessage(JSON.stringify(%s), '*');
return true;
})()`, string(msg))
}
