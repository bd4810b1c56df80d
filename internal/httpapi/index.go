package httpapi

import "net/http"

const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Tennis Highlights API</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 0 auto; padding: 20px; color: #333; }
        h1 { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .endpoint { background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin-bottom: 15px; border-left: 4px solid #3498db; }
        .method { display: inline-block; padding: 3px 8px; background-color: #3498db; color: white; border-radius: 3px; font-weight: bold; margin-right: 10px; }
        code { background-color: #f0f0f0; padding: 2px 4px; border-radius: 3px; font-family: monospace; }
    </style>
</head>
<body>
    <h1>Tennis Highlights API</h1>
    <p>The API is running. Every endpoint below requires the <code>api-key</code> header.</p>

    <div class="endpoint">
        <span class="method">GET</span> <code>/video-info?url=YOUTUBE_URL</code>
        <p>Look up a video's id, title, channel, duration and view count.</p>
    </div>
    <div class="endpoint">
        <span class="method">POST</span> <code>/add-highlight</code>
        <p>Store a highlight. JSON body with at least <code>video_id</code>, <code>title</code> and <code>duration</code>.</p>
    </div>
    <div class="endpoint">
        <span class="method">GET</span> <code>/highlights</code>
        <p>List all highlights.</p>
    </div>
    <div class="endpoint">
        <span class="method">DELETE</span> <code>/highlights/{video_id}</code>
        <p>Remove a highlight.</p>
    </div>
    <div class="endpoint">
        <span class="method">GET</span> <code>/today</code>
        <p>Today's featured highlight.</p>
    </div>
    <div class="endpoint">
        <span class="method">POST</span> <code>/today/rotate</code>
        <p>Feature a different highlight.</p>
    </div>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}
