package render

const pageTemplate = `{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>TV Show Finder</title>
</head>
<body>
<main class="container">
  <h1>TV Show Search</h1>
  <form id="searchForm" method="post" action="/search">
    <input id="searchForm-term" type="search" name="term" value="{{.Term}}" placeholder="Show name" aria-label="Show name">
    <button type="submit" class="btn btn-primary">Go!</button>
  </form>
  {{template "status" .}}
  {{template "shows" .}}
  {{template "episodes" .}}
</main>
</body>
</html>
{{end}}`

const statusTemplate = `{{define "status"}}{{if .Status.Message}}<p id="status" class="status status-{{.Status.Kind}}" role="alert">{{.Status.Message}}</p>{{end}}{{end}}`

const showsTemplate = `{{define "shows"}}<div id="showsList" class="row"{{if .SearchLoading}} aria-busy="true"{{end}}>
{{- range .Cards}}
  <div data-show-id="{{.ID}}" data-card-key="{{.Key}}" class="Show col-md-12 col-lg-6 mb-4">
    <div class="media">
      <img src="{{.Image}}" alt="{{.Name}}" class="w-25 me-3">
      <div class="media-body">
        <h5 class="text-primary">{{.Name}}</h5>
        <div><small>{{.Summary}}</small></div>
        <form method="post" action="/episodes">
          <input type="hidden" name="card" value="{{.Key}}">
          <button type="submit" class="btn btn-outline-light btn-sm Show-getEpisodes">Episodes</button>
        </form>
      </div>
    </div>
  </div>
{{- else}}{{if .Searched}}
  <p class="no-results">No shows found.</p>
{{- end}}{{end}}
</div>{{end}}`

const episodesTemplate = `{{define "episodes"}}<section id="episodesArea"{{if not .EpisodesVisible}} hidden{{end}}{{if .EpisodesLoading}} aria-busy="true"{{end}}>
  <h2>Episodes</h2>
  <ul id="episodesList">
  {{- range .Episodes}}
    <li data-episode-id="{{.ID}}">{{.Label}}</li>
  {{- end}}
  </ul>
</section>{{end}}`
