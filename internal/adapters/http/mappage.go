package http

import (
	"bytes"
	"html/template"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

var mapPage = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Municipal Solid Waste</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
  <style>
    html,body,#map{height:100%;margin:0}
    #panel{position:absolute;bottom:16px;left:16px;z-index:1000;background:#fff;padding:8px 12px;border-radius:4px;font:13px sans-serif}
    #year{font-size:20px;font-weight:bold}
    .legend{background:#fff;padding:6px;font:11px sans-serif}
    .gen-popup .leaflet-popup-content-wrapper{border-left:4px solid #CE7816}
    .rec-popup .leaflet-popup-content-wrapper{border-left:4px solid #006FFF}
  </style>
</head>
<body>
<div id="map"></div>
<div id="panel">
  <div id="year"></div>
  <button id="reverse">&lsaquo;</button>
  <input id="slider" class="range-slider" type="range" min="0" step="1" value="0">
  <button id="forward">&rsaquo;</button>
</div>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script>
const view = {{.View}};
const map = L.map('map', {minZoom: view.min_zoom, maxZoom: view.max_zoom})
  .setView([view.center.lat, view.center.lon], view.zoom);
L.tileLayer(view.tile_url, {attribution: view.attribution}).addTo(map);

const overlays = {}, legends = {};
const control = L.control.layers(null, {}, {collapsed: false}).addTo(map);
const slider = document.getElementById('slider');

function draw(frame) {
  document.getElementById('year').textContent = frame.year;
  slider.max = frame.sequence.steps - 1;
  slider.value = frame.sequence.index;
  for (const layer of frame.layers) {
    let group = overlays[layer.name];
    if (!group) {
      group = overlays[layer.name] = L.layerGroup();
      control.addOverlay(group, layer.overlay);
      group.on('add', () => setVisible(layer.name, true));
      group.on('remove', () => setVisible(layer.name, false));
    }
    group.clearLayers();
    for (const m of layer.markers) {
      const c = L.circleMarker([m.location.lat, m.location.lon], {
        radius: m.radius, fillColor: layer.style.fill_color, color: layer.style.stroke_color,
        weight: layer.style.weight, opacity: layer.style.opacity, fillOpacity: layer.style.fill_opacity,
      });
      c.bindPopup(popupContent(m.popup),
        {offset: L.point(0, m.popup.offset_y), closeButton: false, className: m.popup.class});
      c.on('mouseover', () => c.openPopup());
      c.on('mouseout', () => c.closePopup());
      group.addLayer(c);
    }
    if (layer.visible && !map.hasLayer(group)) group.addTo(map);
    if (!layer.visible && map.hasLayer(group)) map.removeLayer(group);
    drawLegend(layer);
  }
}

// Popup text comes from the data files, so it is set as text, never markup.
function popupContent(popup) {
  const div = document.createElement('div');
  const title = div.appendChild(document.createElement('p')).appendChild(document.createElement('b'));
  title.textContent = popup.title;
  div.appendChild(document.createElement('p')).textContent = popup.body;
  return div;
}

function drawLegend(layer) {
  let lg = legends[layer.name];
  if (!lg) {
    lg = legends[layer.name] = L.control({position: 'bottomright'});
    lg.onAdd = () => L.DomUtil.create('div', 'legend');
    lg.addTo(map);
  }
  fetch('/v1/datasets/' + layer.name + '/legend?format=svg&attribute=' + encodeURIComponent(layer.attribute))
    .then(r => r.text())
    .then(svg => { const c = lg.getContainer();
      c.innerHTML = svg;
      const title = document.createElement('div');
      title.textContent = layer.legend.title;
      c.prepend(title);
    });
  lg.getContainer().style.display = layer.visible ? '' : 'none';
}

function setVisible(name, visible) {
  fetch('/v1/layers/' + name + '/visibility', {method: 'PUT', headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({visible: visible})});
  if (legends[name]) legends[name].getContainer().style.display = visible ? '' : 'none';
}

function refresh() { fetch('/v1/frame').then(r => r.json()).then(draw); }

const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
ws.onmessage = () => refresh();
const send = msg => ws.readyState === 1
  ? ws.send(JSON.stringify(msg))
  : fetch('/v1/sequence' + (msg.action === 'set' ? '' : '/' + msg.action),
      {method: msg.action === 'set' ? 'PUT' : 'POST', headers: {'Content-Type': 'application/json'},
       body: JSON.stringify({index: msg.index})}).then(refresh);

document.getElementById('forward').onclick = () => send({action: 'forward'});
document.getElementById('reverse').onclick = () => send({action: 'reverse'});
slider.oninput = () => send({action: 'set', index: Number(slider.value)});
refresh();
</script>
</body>
</html>
`))

// MapPageHandler serves the interactive map.
func MapPageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := mapPage.Execute(&buf, struct{ View domain.MapView }{deps.View}); err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		c.Set(fiber.HeaderCacheControl, "no-cache")
		return c.Send(buf.Bytes())
	}
}

// TileHandler proxies basemap tiles.
func TileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Tiles == nil {
			return errNotFound(c, "tile proxy not configured")
		}
		z, errZ := strconv.Atoi(c.Params("z"))
		x, errX := strconv.Atoi(c.Params("x"))
		y, errY := strconv.Atoi(c.Params("y"))
		if errZ != nil || errX != nil || errY != nil {
			return errBadRequest(c, "tile coordinates must be integers")
		}

		data, contentType, err := deps.Tiles.Fetch(c.UserContext(), z, x, y)
		if err != nil {
			return errFrom(c, err)
		}
		c.Set(fiber.HeaderContentType, contentType)
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		return c.Send(data)
	}
}
