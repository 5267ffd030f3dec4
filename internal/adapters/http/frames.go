package http

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/wasteatlas/wasteatlas/internal/adapters/render"
	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/pkg/metrics"
)

// MIMEProtobuf selects the binary frame encoding.
const MIMEProtobuf = "application/x-protobuf"

// FrameHandler returns the frame at the shared sequence position.
func FrameHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := deps.Frames.Current(c.UserContext())
		if err != nil {
			return errFrom(c, err)
		}
		return sendFrame(c, f)
	}
}

// FrameAtHandler returns the frame at :index without moving the shared
// sequence. The current index matches /v1/frame; other indexes are the
// frame reached by jumping there directly.
func FrameAtHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		index, err := c.ParamsInt("index")
		if err != nil {
			return errBadRequest(c, "index must be an integer")
		}
		f, err := deps.Frames.At(c.UserContext(), index)
		if err != nil {
			return errFrom(c, err)
		}
		return sendFrame(c, f)
	}
}

// FrameSVGHandler draws the current frame, or ?index=, as SVG.
func FrameSVGHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			f   *domain.Frame
			err error
		)
		if c.Query("index") != "" {
			f, err = deps.Frames.At(c.UserContext(), c.QueryInt("index"))
		} else {
			f, err = deps.Frames.Current(c.UserContext())
		}
		if err != nil {
			return errFrom(c, err)
		}

		view := render.View{
			Width:  c.QueryInt("width", deps.Width),
			Height: c.QueryInt("height", deps.Height),
			Center: deps.View.Center,
			Zoom:   c.QueryInt("zoom", deps.View.Zoom),
		}
		if view.Width <= 0 || view.Width > 4096 || view.Height <= 0 || view.Height > 4096 {
			return errBadRequest(c, "width and height must be in [1,4096]")
		}
		if view.Zoom < deps.View.MinZoom || view.Zoom > deps.View.MaxZoom {
			return errBadRequest(c, fmt.Sprintf("zoom must be in [%d,%d]", deps.View.MinZoom, deps.View.MaxZoom))
		}

		var buf bytes.Buffer
		if err := render.Frame(&buf, f, view); err != nil {
			return errInternal(c, err.Error())
		}
		metrics.FramesRendered.WithLabelValues("svg").Inc()
		c.Set(fiber.HeaderContentType, "image/svg+xml")
		return c.Send(buf.Bytes())
	}
}

// sendFrame writes f as JSON, or as a protobuf Struct when the client
// prefers application/x-protobuf.
func sendFrame(c *fiber.Ctx, f *domain.Frame) error {
	c.Vary(fiber.HeaderAccept)
	if c.Accepts(fiber.MIMEApplicationJSON, MIMEProtobuf) != MIMEProtobuf {
		metrics.FramesRendered.WithLabelValues("json").Inc()
		return c.JSON(f)
	}

	data, err := EncodeFrameProto(f)
	if err != nil {
		return errInternal(c, err.Error())
	}
	metrics.FramesRendered.WithLabelValues("protobuf").Inc()
	c.Set(fiber.HeaderContentType, MIMEProtobuf)
	return c.Send(data)
}

// EncodeFrameProto encodes f as a google.protobuf.Struct with the same
// field names as the JSON form.
func EncodeFrameProto(f *domain.Frame) ([]byte, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal frame: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal frame: %w", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("frame struct: %w", err)
	}
	return proto.Marshal(s)
}
