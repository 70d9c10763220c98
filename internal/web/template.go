package web

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Subtitle}} | {{.Title}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f1f5f9; color: #0f172a; }
header { background: #0b1f3a; color: #fff; padding: 24px 32px; }
header h1 { margin: 0; font-size: 28px; }
header p { margin: 4px 0 0; color: #bfdbfe; }
main { max-width: 1200px; margin: 0 auto; padding: 24px 32px; }
.toolbar { display: flex; justify-content: space-between; align-items: center; gap: 12px; flex-wrap: wrap; }
.tabs a { display: inline-block; padding: 8px 16px; margin-right: 8px; border-radius: 8px; background: #fff; border: 1px solid #e2e8f0; color: inherit; text-decoration: none; font-weight: 600; }
.tabs a.active { background: #0b1f3a; color: #fff; }
.tabs a.active.income { background: #16a34a; }
.tabs a.active.protection { background: #2563eb; }
button { padding: 8px 16px; border-radius: 8px; border: 1px solid #e2e8f0; background: #fff; font-weight: 600; cursor: pointer; }
button:disabled { opacity: .5; cursor: not-allowed; }
.count { margin: 16px 0; color: #64748b; font-size: 14px; }
.panel { background: #fff; border: 1px solid #e2e8f0; border-radius: 12px; padding: 24px; }
.message { text-align: center; color: #64748b; padding: 48px; }
table { width: 100%; border-collapse: collapse; }
th, td { text-align: left; padding: 12px; border-bottom: 1px solid #e2e8f0; }
th a { color: inherit; text-decoration: none; }
tr.selected { background: #eff6ff; }
td a { color: inherit; font-weight: 700; text-decoration: none; }
.bar { height: 6px; border-radius: 3px; background: #e2e8f0; width: 120px; }
.bar span { display: block; height: 6px; border-radius: 3px; }
.band-critical { background: #dc2626; }
.band-warning { background: #f97316; }
.band-caution { background: #eab308; }
.band-safe { background: #16a34a; }
.badge { padding: 4px 10px; border-radius: 999px; font-size: 12px; font-weight: 700; color: #fff; background: #4b5563; }
.badge-income { background: #16a34a; }
.badge-protection { background: #2563eb; }
.spotlight { margin-top: 24px; }
.metrics { display: grid; grid-template-columns: repeat(3, 1fr); gap: 16px; margin-bottom: 24px; }
.figures { display: grid; grid-template-columns: repeat(4, 1fr); gap: 12px; margin-bottom: 24px; }
.metric { border: 2px solid #e2e8f0; border-radius: 12px; padding: 16px; }
.metric .label { font-size: 13px; color: #64748b; font-weight: 600; }
.metric .value { font-size: 28px; font-weight: 700; }
.tone-danger { color: #dc2626; }
.tone-warning { color: #f97316; }
.tone-success { color: #16a34a; }
.tone-muted { color: #64748b; }
.tone-debit { color: #dc2626; }
.tone-credit { color: #16a34a; }
.cards { display: grid; grid-template-columns: repeat(auto-fill, minmax(260px, 1fr)); gap: 12px; margin-bottom: 24px; }
.card { border: 1px solid #e2e8f0; border-radius: 10px; padding: 14px; font-size: 13px; }
.card.recommended { border: 2px solid #16a34a; }
.card dl { display: grid; grid-template-columns: 1fr 1fr; gap: 6px; margin: 8px 0 0; }
.card dt { color: #64748b; }
.card dd { margin: 0; font-weight: 600; }
.take { background: #eff6ff; border: 2px solid #2563eb; border-radius: 12px; padding: 16px; }
.cta { display: block; text-align: center; margin-top: 24px; padding: 14px; border-radius: 12px; background: #0b1f3a; color: #fff; font-weight: 700; text-decoration: none; }
.close { float: right; color: #64748b; text-decoration: none; font-size: 14px; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <p>{{.Subtitle}}</p>
</header>
<main>
  <div class="toolbar">
    <nav class="tabs">
      {{- range .Tabs}}
      <a href="{{.URL}}" class="tab {{.Filter}}{{if .Active}} active{{end}}" aria-pressed="{{.Active}}">{{.Label}}</a>
      {{- end}}
    </nav>
    <form method="post" action="/refresh">
      <input type="hidden" name="return" value="{{.ReturnTo}}">
      <button type="submit" id="refresh" title="Reload market data from server"{{if not .CanRefresh}} disabled{{end}}>
        {{- if .Refreshing}}Refreshing...{{else}}Refresh Data{{end -}}
      </button>
    </form>
  </div>

  {{- if and (not .Loading) (not .NoData)}}
  <div class="count" id="count">{{.CountLabel}}</div>
  {{- end}}

  {{- if .Loading}}
  <div class="panel message" id="loading">Loading market data...</div>
  {{- else if .NoData}}
  <div class="panel message" id="empty">No market data available. Please run the Python script to generate data.</div>
  {{- else}}
  <div class="panel">
    <table id="opportunities">
      <thead>
        <tr>
          {{- range .Headers}}
          <th data-field="{{.Field}}"{{if .Active}} class="active" aria-sort="{{if eq .Direction "asc"}}ascending{{else}}descending{{end}}"{{end}}><a href="{{.URL}}">{{.Label}}{{if .Arrow}} {{.Arrow}}{{end}}</a></th>
          {{- end}}
          <th>Strategy</th>
        </tr>
      </thead>
      <tbody>
        {{- range .Rows}}
        <tr data-ticker="{{.Ticker}}"{{if .Selected}} class="selected"{{end}}>
          <td><a href="{{.URL}}">{{.Ticker}}</a></td>
          <td>{{.Name}}</td>
          <td>{{.Price}}</td>
          <td>
            <div class="bar"><span class="band-{{.Band}}" style="width: {{printf "%.1f" .BarWidth}}%"></span></div>
            <span class="iv-rank">{{.IVRank}}</span>
          </td>
          <td><span class="badge badge-{{.StrategyTag}}">{{.Strategy}}</span></td>
        </tr>
        {{- end}}
      </tbody>
    </table>
  </div>
  {{- end}}

  {{- with .Panel}}
  <section class="panel spotlight" id="spotlight" data-ticker="{{.Ticker}}">
    <a class="close" id="close" href="{{$.CloseURL}}">Close</a>
    <h2>{{.Ticker}} <small>{{.Name}}</small></h2>
    <span class="badge badge-{{.StrategyTag}}">{{.Strategy}}</span>

    <div class="metrics">
      <div class="metric"><div class="label">99th %ile Crowding</div><div class="value" id="crowding">{{.Crowding}}%</div></div>
      <div class="metric"><div class="label">Skew Status</div><div class="value tone-{{.SkewTone}}" id="skew-status">{{.SkewStatus}}</div></div>
      <div class="metric"><div class="label">IV Status</div><div class="value tone-{{.IVTone}}" id="iv-status">{{.IVStatus}}</div></div>
    </div>

    <div class="figures">
      <div class="metric"><div class="label">Current Price</div><div class="value">{{.Price}}</div></div>
      <div class="metric"><div class="label">IV Rank</div><div class="value">{{.IVRank}}</div></div>
      <div class="metric"><div class="label">Skew</div><div class="value">{{.Skew}}</div></div>
      <div class="metric"><div class="label">Put/Call Ratio</div><div class="value">{{.PutCallRatio}}</div></div>
    </div>

    {{- if .ShowRecommendations}}
    <h3 id="recommendations">{{.RecommendationsTitle}}</h3>
    <div class="cards">
      {{- range .CoveredCalls}}
      <div class="card covered-call{{if .Recommended}} recommended{{end}}">
        <strong>{{.Title}}</strong> <span>{{.OTM}}</span>{{if .Recommended}} <span class="badge badge-income">Recommended</span>{{end}}
        <dl>
          <dt>Days to Expiration</dt><dd>{{.DaysToExpiration}}</dd>
          <dt>Upside %</dt><dd>{{.Upside}}</dd>
          <dt>Option Yield</dt><dd>{{.OptionYield}}</dd>
          <dt>Annualized Yield</dt><dd>{{.AnnualizedYield}}</dd>
          <dt>Premium</dt><dd>{{.Premium}}</dd>
          {{- if .IV}}
          <dt>IV</dt><dd>{{.IV}}</dd>
          {{- end}}
        </dl>
      </div>
      {{- end}}
      {{- range .Collars}}
      <div class="card collar{{if .Recommended}} recommended{{end}}">
        <strong>{{.Title}}</strong>{{if .Recommended}} <span class="badge badge-protection">Recommended</span>{{end}}
        <dl>
          <dt>Days to Expiration</dt><dd>{{.DaysToExpiration}}</dd>
          <dt>Net Cost</dt><dd class="tone-{{.NetCostTone}}">{{.NetCost}}</dd>
          <dt>Downside Protection</dt><dd>{{.Downside}}</dd>
          <dt>Upside Cap</dt><dd>{{.UpsideCap}}</dd>
        </dl>
        <p>{{.Legs}}</p>
      </div>
      {{- end}}
    </div>
    {{- end}}

    <h3>Marine Layer Take</h3>
    <div class="take"><p id="narrative">{{.Rationale}}{{range .Sentences}} <span>{{.}}</span>{{end}}</p></div>

    <a class="cta" id="contact" href="{{.ContactLink}}">Request Term Sheet</a>
  </section>
  {{- end}}
</main>
</body>
</html>
`
