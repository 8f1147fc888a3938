package webui

import (
	"html/template"
	"io"
	"time"

	"imagestudio/core"
	"imagestudio/studio"
)

// pageCSS is shared by the studio page and the setup page.
const pageCSS = `
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, sans-serif;
            min-height: 100vh;
            background: linear-gradient(135deg, #1a1a2e 0%, #16213e 50%, #0f3460 100%);
            color: #ffffff;
            padding: 32px 16px;
        }
        main { max-width: 960px; margin: 0 auto; display: flex; flex-direction: column; gap: 24px; }
        h1 {
            font-size: 32px;
            font-weight: 600;
            background: linear-gradient(135deg, #60a5fa 0%, #a78bfa 100%);
            -webkit-background-clip: text;
            -webkit-text-fill-color: transparent;
            background-clip: text;
        }
        .subtitle { font-size: 14px; color: rgba(255, 255, 255, 0.6); margin-top: 4px; }
        .panel {
            background: rgba(255, 255, 255, 0.05);
            border: 1px solid rgba(255, 255, 255, 0.1);
            border-radius: 16px;
            padding: 24px;
        }
        label { font-size: 14px; color: rgba(255, 255, 255, 0.8); display: block; margin-bottom: 8px; }
        textarea, select {
            width: 100%;
            padding: 12px 16px;
            background: rgba(255, 255, 255, 0.08);
            border: 1px solid rgba(255, 255, 255, 0.15);
            border-radius: 8px;
            color: #ffffff;
            font-size: 15px;
        }
        textarea { min-height: 96px; resize: vertical; }
        select option { color: #1a1a2e; }
        .row { display: flex; gap: 16px; margin-top: 16px; }
        .row > div { flex: 1; }
        .actions { display: flex; gap: 12px; margin-top: 20px; flex-wrap: wrap; }
        button {
            padding: 12px 20px;
            border: none;
            border-radius: 8px;
            font-size: 15px;
            font-weight: 600;
            cursor: pointer;
            color: #ffffff;
            background: linear-gradient(135deg, #3b82f6 0%, #8b5cf6 100%);
        }
        button.secondary { background: rgba(255, 255, 255, 0.12); }
        button.danger { background: rgba(239, 68, 68, 0.6); }
        button.small { padding: 6px 12px; font-size: 13px; }
        button:disabled { opacity: 0.5; cursor: not-allowed; }
        .notice { border-radius: 12px; padding: 16px 20px; border: 1px solid; }
        .notice h2 { font-size: 17px; margin-bottom: 6px; }
        .notice p { font-size: 14px; margin-top: 4px; }
        .notice ol { margin: 8px 0 0 20px; font-size: 14px; }
        .notice form { margin-top: 10px; }
        .notice-success { background: rgba(34, 197, 94, 0.12); border-color: rgba(34, 197, 94, 0.4); }
        .notice-info { background: rgba(59, 130, 246, 0.12); border-color: rgba(59, 130, 246, 0.4); }
        .notice-warning { background: rgba(234, 179, 8, 0.12); border-color: rgba(234, 179, 8, 0.4); }
        .notice-error { background: rgba(239, 68, 68, 0.12); border-color: rgba(239, 68, 68, 0.4); }
        .result img { max-width: 100%; border-radius: 12px; display: block; }
        .caption { font-size: 13px; color: rgba(255, 255, 255, 0.6); margin-top: 8px; }
        details { margin-top: 16px; font-size: 14px; color: rgba(255, 255, 255, 0.7); }
        details dl { margin-top: 8px; display: grid; grid-template-columns: max-content 1fr; gap: 4px 12px; }
        .history-header { display: flex; justify-content: space-between; align-items: center; }
        .history { display: grid; grid-template-columns: repeat(auto-fill, minmax(200px, 1fr)); gap: 16px; margin-top: 16px; }
        .entry { background: rgba(255, 255, 255, 0.04); border-radius: 12px; padding: 12px; }
        .entry img { width: 100%; border-radius: 8px; display: block; }
        .entry p { font-size: 13px; margin-top: 6px; word-break: break-word; }
        .entry .meta { color: rgba(255, 255, 255, 0.5); font-size: 12px; }
        .entry .actions { margin-top: 8px; gap: 8px; }
        a.button-link { color: #93c5fd; font-size: 13px; align-self: center; }
        code { background: rgba(255, 255, 255, 0.1); padding: 2px 6px; border-radius: 4px; }
`

const studioPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Image Studio</title>
    <style>{{template "css"}}</style>
</head>
<body>
<main>
    <header>
        <h1>AI Image Generator</h1>
        <p class="subtitle">Describe an image, pick a style and size, and generate.</p>
    </header>

    {{with .Notice}}
    <section class="notice notice-{{.Level}}" role="status">
        <h2>{{.Title}}</h2>
        {{if .Message}}<p>{{.Message}}</p>{{end}}
        {{if .Hint}}<p>{{.Hint}}</p>{{end}}
        {{if .Steps}}<ol>{{range .Steps}}<li>{{.}}</li>{{end}}</ol>{{end}}
        <form method="post" action="/notice/dismiss"><button class="secondary small" type="submit">Dismiss</button></form>
    </section>
    {{end}}

    <section class="panel">
        <form id="generate-form" method="post" action="/generate">
            <label for="prompt">Describe the image you want to generate</label>
            <textarea id="prompt" name="prompt" placeholder="A serene mountain lake at sunrise...">{{.Form.Prompt}}</textarea>
            <div class="row">
                <div>
                    <label for="style">Art style</label>
                    <select id="style" name="style">
                        {{$style := .Form.Style}}{{range .Styles}}<option value="{{.}}"{{if eq . $style}} selected{{end}}>{{.}}</option>{{end}}
                    </select>
                </div>
                <div>
                    <label for="size">Image size</label>
                    <select id="size" name="size">
                        {{$size := .Form.Size}}{{range .Sizes}}<option value="{{.}}"{{if eq . $size}} selected{{end}}>{{.}}</option>{{end}}
                    </select>
                </div>
            </div>
            <div class="actions">
                <button type="submit"{{if .Generating}} disabled{{end}}>{{if .Generating}}Generating...{{else}}Generate Image{{end}}</button>
                <button type="submit" class="secondary" formaction="/random"{{if .Generating}} disabled{{end}}>Surprise Me</button>
            </div>
            {{with .PendingRandom}}<p class="caption">Random pick: {{.Prompt}} ({{.Style}}, {{.Size}})</p>{{end}}
            <details>
                <summary>Advanced settings</summary>
                <dl>
                    <dt>Provider</dt><dd>{{.Provider}}</dd>
                    <dt>Model</dt><dd><code>{{.Model}}</code></dd>
                </dl>
            </details>
        </form>
    </section>

    {{with .Latest}}
    <section class="panel result">
        <img src="/history/{{.Index}}/image?id={{.ID}}" alt="{{.RawPrompt}}">
        <p class="caption">{{.Style}} · {{.Size}} · {{.Width}}×{{.Height}}</p>
        <div class="actions">
            <a class="button-link" href="/history/{{.Index}}/download?id={{.ID}}">Download image</a>
        </div>
    </section>
    {{end}}
    {{if .FinalPrompt}}
    <section class="panel">
        <label>Final prompt used</label>
        <p>{{.FinalPrompt}}</p>
    </section>
    {{end}}

    <section class="panel">
        <div class="history-header">
            <h2>History ({{.HistoryCount}})</h2>
            <div class="actions" style="margin-top:0">
                <form method="post" action="/history/toggle"><button class="secondary small" type="submit">{{if .HistoryVisible}}Hide history{{else}}Show history{{end}}</button></form>
                {{if .HistoryCount}}<form method="post" action="/history/clear"><button class="danger small" type="submit">Clear history</button></form>{{end}}
            </div>
        </div>
        {{if .HistoryVisible}}
        {{if .History}}
        <div class="history">
            {{range .History}}
            <article class="entry">
                <img src="/history/{{.Index}}/thumbnail?id={{.ID}}" alt="{{.RawPrompt}}" loading="lazy">
                <p>{{.RawPrompt}}</p>
                <p class="meta">{{.Style}} · {{.Size}} · {{ago .CreatedAt}}</p>
                <div class="actions">
                    <a class="button-link" href="/history/{{.Index}}/download?id={{.ID}}">Download</a>
                    <form method="post" action="/history/{{.Index}}/delete"><button class="danger small" type="submit">Delete</button></form>
                </div>
            </article>
            {{end}}
        </div>
        {{else}}
        <p class="caption">No images generated yet.</p>
        {{end}}
        {{end}}
    </section>
</main>
<script>
    document.getElementById('prompt').addEventListener('keydown', function (e) {
        if (e.key === 'Enter' && !e.shiftKey) {
            e.preventDefault();
            document.getElementById('generate-form').requestSubmit();
        }
    });
</script>
</body>
</html>`

const setupPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Image Studio - Setup required</title>
    <style>{{template "css"}}</style>
</head>
<body>
<main>
    <header>
        <h1>AI Image Generator</h1>
        <p class="subtitle">Setup required before images can be generated.</p>
    </header>
    <section class="notice notice-error">
        <h2>{{.Message}}</h2>
        {{if .Action}}<p>{{.Action}}</p>{{end}}
        {{if .Steps}}
        <p>To fix this:</p>
        <ol>{{range .Steps}}<li>{{.}}</li>{{end}}</ol>
        {{end}}
    </section>
</main>
</body>
</html>`

var pageFuncs = template.FuncMap{
	"ago": func(t time.Time) string { return FormatAge(time.Since(t)) },
}

var (
	studioTemplate = template.Must(template.New("studio").Funcs(pageFuncs).Parse(studioPageHTML))
	setupTemplate  = template.Must(template.New("setup").Parse(setupPageHTML))
)

func init() {
	template.Must(studioTemplate.New("css").Parse(pageCSS))
	template.Must(setupTemplate.New("css").Parse(pageCSS))
}

// RenderStudioPage writes the main page for view to w.
func RenderStudioPage(w io.Writer, view studio.View) error {
	return studioTemplate.Execute(w, view)
}

// RenderSetupPage writes the setup instructions for a missing credential.
func RenderSetupPage(w io.Writer, setup *core.ConfigError) error {
	return setupTemplate.Execute(w, setup)
}
