package http

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/wasteatlas/wasteatlas/internal/adapters/render"
	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

// AttributesResponse lists a dataset's year attributes in sequence order.
type AttributesResponse struct {
	Dataset    string   `json:"dataset"`
	Attributes []string `json:"attributes"`
	Years      []string `json:"years"`
}

// SequenceResponse is the shared sequence position.
type SequenceResponse struct {
	Generation uint64               `json:"generation"`
	Sequence   domain.SequenceState `json:"sequence"`
	Year       string               `json:"year"`
}

// ListDatasetsHandler returns the installed datasets.
func ListDatasetsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := deps.Datasets.List(c.UserContext())
		if err != nil {
			return errFrom(c, err)
		}
		page, pg := paginate(c, list)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GetDatasetHandler returns a single dataset summary.
func GetDatasetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ds, err := deps.Datasets.Get(c.UserContext(), c.Params("name"))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(ds.Summary())
	}
}

// DatasetAttributesHandler returns the ordered year attributes.
func DatasetAttributesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ds, err := deps.Datasets.Get(c.UserContext(), c.Params("name"))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(AttributesResponse{
			Dataset:    ds.Name,
			Attributes: ds.Attributes,
			Years:      ds.Years(),
		})
	}
}

// DatasetFeaturesHandler pages through a dataset's features.
func DatasetFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ds, err := deps.Datasets.Get(c.UserContext(), c.Params("name"))
		if err != nil {
			return errFrom(c, err)
		}
		page, pg := paginate(c, ds.Features)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// StatsHandler returns min, mean and max for an attribute. Without
// ?attribute= the selected year is used.
func StatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := deps.Datasets.Stats(c.UserContext(), c.Params("name"), c.Query("attribute"))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(stats)
	}
}

// LegendHandler returns a dataset's legend as JSON, or as SVG when
// ?format=svg or the client accepts only image/svg+xml.
func LegendHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		lg, err := deps.Datasets.Legend(c.UserContext(), name, c.Query("attribute"))
		if err != nil {
			return errFrom(c, err)
		}
		if c.Query("format") != "svg" && c.Accepts(fiber.MIMEApplicationJSON, "image/svg+xml") != "image/svg+xml" {
			return c.JSON(lg)
		}

		ds, err := deps.Datasets.Get(c.UserContext(), name)
		if err != nil {
			return errFrom(c, err)
		}
		var buf bytes.Buffer
		if err := render.Legend(&buf, lg, domain.ProfileFor(ds.Kind)); err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "image/svg+xml")
		return c.Send(buf.Bytes())
	}
}

// MarkerAtHandler hit-tests a dataset's circles at lon/lat. zoom defaults
// to the map's initial zoom.
func MarkerAtHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat")
		lon := c.QueryFloat("lon")
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return errBadRequest(c, "lat must be in [-90,90] and lon in [-180,180]")
		}
		zoom := c.QueryInt("zoom", deps.View.Zoom)
		if zoom < 0 || zoom > 22 {
			return errBadRequest(c, "zoom must be in [0,22]")
		}

		m, err := deps.Datasets.MarkerAt(c.UserContext(), c.Params("name"), lon, lat, zoom)
		if err != nil {
			return errFrom(c, err)
		}
		if m == nil {
			return errNotFound(c, "no marker at this point")
		}
		return c.JSON(m)
	}
}

// GetSequenceHandler returns the shared sequence position.
func GetSequenceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !deps.Sequence.Ready() {
			return errFrom(c, domain.ErrAtlasNotLoaded)
		}
		return c.JSON(SequenceResponse{
			Generation: deps.Sequence.Generation(),
			Sequence:   deps.Sequence.State(),
			Year:       deps.Sequence.Year(),
		})
	}
}

// ForwardHandler steps the sequence forward, wrapping after the last year.
func ForwardHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ev, err := deps.Sequence.Forward(c.UserContext())
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(ev)
	}
}

// ReverseHandler steps the sequence back, wrapping before the first year.
func ReverseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ev, err := deps.Sequence.Reverse(c.UserContext())
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(ev)
	}
}

type setSequenceRequest struct {
	Index *int `json:"index"`
}

// SetSequenceHandler jumps to the index in the body, as the slider does.
func SetSequenceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req setSequenceRequest
		if err := c.BodyParser(&req); err != nil || req.Index == nil {
			return errBadRequest(c, `body must be {"index": <int>}`)
		}
		ev, err := deps.Sequence.SetDirect(c.UserContext(), *req.Index)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(ev)
	}
}

type visibilityRequest struct {
	Visible *bool `json:"visible"`
}

// LayerVisibilityHandler shows or hides an overlay layer.
func LayerVisibilityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req visibilityRequest
		if err := c.BodyParser(&req); err != nil || req.Visible == nil {
			return errBadRequest(c, `body must be {"visible": <bool>}`)
		}
		name := c.Params("name")
		if err := deps.Sequence.SetVisible(name, *req.Visible); err != nil {
			return errFrom(c, err)
		}
		return c.JSON(fiber.Map{"name": name, "visible": *req.Visible})
	}
}
