// Package templates holds the dashboard page. The page is a thin shell:
// it draws whatever chart data the SSE endpoint patches into its signals,
// and the region radio simply re-requests that endpoint.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Dashboard returns the single-page dashboard component.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardHTML)
		return err
	})
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Soul Foods - Pink Morsel Sales Analysis</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/plotly.js-dist-min@2.35.2/plotly.min.js"></script>
<style>
body { font-family: system-ui, sans-serif; max-width: 1200px; margin: auto; padding: 20px; }
h1 { text-align: center; color: #2E86AB; }
.region-picker { display: flex; gap: 16px; justify-content: center; margin: 20px 0; }
.region-picker label { cursor: pointer; text-transform: capitalize; }
.panel { background: #F8F9FA; padding: 20px; border-radius: 10px; margin-bottom: 20px; }
.summary-line { font-size: 16px; }
.key-findings li { margin: 4px 0; }
#sales-chart { height: 700px; }
</style>
</head>
<body data-signals='{"region":"all","chart":{"dates":[],"sales":[],"prices":[]},"stats":{}}'
      data-on-load="@get('/sse/daily-sales?region=all')">

<h1>Soul Foods &mdash; Pink Morsel Sales Analysis</h1>

<div class="region-picker">
<label><input type="radio" name="region" value="all" checked data-on-change="@get('/sse/daily-sales?region=all')"> all</label>
<label><input type="radio" name="region" value="north" data-on-change="@get('/sse/daily-sales?region=north')"> north</label>
<label><input type="radio" name="region" value="south" data-on-change="@get('/sse/daily-sales?region=south')"> south</label>
<label><input type="radio" name="region" value="east" data-on-change="@get('/sse/daily-sales?region=east')"> east</label>
<label><input type="radio" name="region" value="west" data-on-change="@get('/sse/daily-sales?region=west')"> west</label>
</div>

<div class="panel" id="summary-content"><p class="summary-line">Loading&hellip;</p></div>

<div id="sales-chart" data-effect="renderChart($chart)"></div>

<script>
const CUTOVER = '2021-01-15';

function renderChart(chart) {
  if (!chart || !chart.dates || chart.dates.length === 0) {
    Plotly.react('sales-chart', [], { title: 'No matching sales records' });
    return;
  }
  const sales = {
    x: chart.dates, y: chart.sales, mode: 'lines', name: 'Daily Sales',
    line: { color: '#FF69B4', width: 2 },
    hovertemplate: '<b>Date:</b> %{x}<br><b>Sales:</b> $%{y:,.0f}<extra></extra>'
  };
  const price = {
    x: chart.dates, y: chart.prices, mode: 'lines', name: 'Price',
    yaxis: 'y2', xaxis: 'x2',
    line: { color: '#FF4500', width: 3 },
    hovertemplate: '<b>Date:</b> %{x}<br><b>Price:</b> $%{y}<extra></extra>'
  };
  const layout = {
    title: { text: 'Impact of the Pink Morsel Price Increase on Sales' },
    grid: { rows: 2, columns: 1, roworder: 'top to bottom' },
    yaxis: { title: 'Daily Sales ($)', domain: [0.35, 1] },
    yaxis2: { title: 'Price ($)', domain: [0, 0.25] },
    hovermode: 'x unified',
    shapes: [
      { type: 'line', x0: CUTOVER, x1: CUTOVER, yref: 'paper', y0: 0, y1: 1,
        line: { color: 'red', dash: 'dash' } }
    ],
    annotations: [
      { x: CUTOVER, yref: 'paper', y: 0.95, text: 'Price Increase:<br>$3.00 &rarr; $5.00',
        showarrow: true, arrowhead: 2, arrowcolor: 'red',
        bgcolor: 'white', bordercolor: 'red', borderwidth: 1 }
    ]
  };
  Plotly.react('sales-chart', [sales, price], layout);
}
</script>
</body>
</html>
`
