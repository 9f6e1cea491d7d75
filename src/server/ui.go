package server

import "github.com/gin-gonic/gin"

// -----------------------------------------------------------------------------
// Embedded browser UI
// -----------------------------------------------------------------------------

func (s *WebServer) getIndex(c *gin.Context) {
	c.Data(200, "text/html; charset=utf-8", []byte(indexPage))
}

const indexPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Imbalance Screener</title>
<style>
  body { font-family: -apple-system, Segoe UI, sans-serif; margin: 2em auto; max-width: 960px; color: #222; }
  h1 { font-size: 1.4em; }
  .controls { display: flex; gap: 1.5em; flex-wrap: wrap; align-items: flex-end; margin-bottom: 1em; }
  .controls label { display: block; font-size: 0.8em; color: #555; margin-bottom: 0.3em; }
  textarea { width: 420px; height: 3em; }
  input[type=number] { width: 5em; }
  table { border-collapse: collapse; width: 100%; margin-top: 1em; }
  th, td { border: 1px solid #ddd; padding: 6px 10px; text-align: right; }
  th { background: #f5f5f5; }
  td:first-child, th:first-child { text-align: left; }
  #status { color: #666; font-size: 0.9em; min-height: 1.2em; }
  .ok { color: #1a7f37; }
  .warn { color: #b35900; }
</style>
</head>
<body>
<h1>&#128202; Imbalance Screener (Fyers)</h1>

<div class="controls">
  <div>
    <label>NSE symbols (comma separated)</label>
    <textarea id="symbols"></textarea>
  </div>
  <div>
    <label>Multiplier (last candle vs avg): <span id="multVal"></span></label>
    <input type="range" id="mult" min="3" max="30" step="1">
  </div>
  <div>
    <label>Refresh interval (seconds)</label>
    <input type="number" id="interval" min="15" step="5">
  </div>
  <div>
    <button id="apply">Apply</button>
  </div>
</div>

<div id="status">Connecting&hellip;</div>
<div id="summary"></div>
<table id="results" style="display:none">
  <thead>
    <tr><th>Symbol</th><th>Last Value (&#8377; Cr)</th><th>Avg Value (&#8377; Cr)</th><th>Close</th><th>%Move (1m)</th></tr>
  </thead>
  <tbody></tbody>
</table>

<script>
(function () {
  var statusEl = document.getElementById('status');
  var summaryEl = document.getElementById('summary');
  var tableEl = document.getElementById('results');
  var bodyEl = tableEl.querySelector('tbody');
  var multEl = document.getElementById('mult');
  var multValEl = document.getElementById('multVal');

  multEl.addEventListener('input', function () { multValEl.textContent = multEl.value; });

  fetch('/api/settings').then(function (r) { return r.json(); }).then(function (s) {
    document.getElementById('symbols').value = (s.symbols || []).join(', ');
    multEl.value = s.multiplier;
    multValEl.textContent = s.multiplier;
    document.getElementById('interval').value = s.refresh_interval_seconds;
  });

  document.getElementById('apply').addEventListener('click', function () {
    var payload = {
      symbols_input: document.getElementById('symbols').value,
      multiplier: parseFloat(multEl.value),
      refresh_interval_seconds: parseInt(document.getElementById('interval').value, 10)
    };
    fetch('/api/settings', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(payload)
    }).then(function (r) { return r.json(); }).then(function (resp) {
      if (resp.error) {
        statusEl.textContent = 'Settings rejected: ' + resp.error;
        statusEl.className = 'warn';
      } else {
        statusEl.textContent = 'Settings applied (' + resp.symbols + ' symbols). Takes effect next scan.';
        statusEl.className = 'ok';
      }
    });
  });

  function render(snap) {
    var when = new Date(snap.timestamp * 1000).toLocaleTimeString();
    if (snap.degraded) {
      statusEl.textContent = 'No working access token. Add access_token or refresh_token to the config and restart.';
      statusEl.className = 'warn';
      return;
    }
    if (snap.market_closed) {
      statusEl.textContent = 'Market closed (updated ' + when + ').';
      statusEl.className = '';
      return;
    }

    var results = snap.results || [];
    if (results.length > 0) {
      statusEl.textContent = 'Found ' + results.length + ' imbalance stocks (updated ' + when + ')';
      statusEl.className = 'ok';
    } else {
      statusEl.textContent = 'No imbalance stocks right now (updated ' + when + ').';
      statusEl.className = '';
    }

    var notices = snap.notices || [];
    summaryEl.textContent = notices.length > 0 ? 'Notices: ' + notices.join('; ') : '';

    bodyEl.innerHTML = '';
    for (var i = 0; i < results.length; i++) {
      var r = results[i];
      var row = document.createElement('tr');
      row.innerHTML = '<td>' + r.symbol + '</td><td>' + r.last_value_cr.toFixed(2) +
        '</td><td>' + r.avg_value_cr.toFixed(2) + '</td><td>' + r.close +
        '</td><td>' + r.pct_move.toFixed(2) + '</td>';
      bodyEl.appendChild(row);
    }
    tableEl.style.display = results.length > 0 ? '' : 'none';
  }

  function connect() {
    var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
    var ws = new WebSocket(proto + location.host + '/ws');
    ws.onmessage = function (ev) { render(JSON.parse(ev.data)); };
    ws.onclose = function () {
      statusEl.textContent = 'Disconnected. Reconnecting…';
      statusEl.className = 'warn';
      setTimeout(connect, 3000);
    };
  }
  connect();
})();
</script>
</body>
</html>
`
