package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/missionsketch/internal/core/domain"
)

type createMissionRequest struct {
	Name string `json:"name"`
}

type startDrawingRequest struct {
	Kind string `json:"kind"`
}

type completeRequest struct {
	Handle   domain.DrawHandle   `json:"handle"`
	Vertices []domain.Coordinate `json:"vertices"`
}

type importPolygonRequest struct {
	Anchor    *int   `json:"anchor"`
	Direction string `json:"direction"`
}

// CreateMissionHandler starts a new mission with an empty route.
func CreateMissionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createMissionRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		if len(req.Name) > 200 {
			return errBadRequest(c, "name too long (max 200 characters)")
		}

		snap, err := deps.Missions.Create(c.UserContext(), req.Name)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/missions/" + snap.Mission.ID)
		return c.Status(fiber.StatusCreated).JSON(snap)
	}
}

// ListMissionsHandler returns the live missions, oldest first.
func ListMissionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c)
		page, pg := paginate(deps.Missions.List(c.UserContext()), offset, limit)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GetMissionHandler returns a mission snapshot.
func GetMissionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := deps.Missions.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(snap)
	}
}

// CloseMissionHandler discards a mission.
func CloseMissionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Missions.Close(c.UserContext(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// StartDrawingHandler activates a line or polygon draw.
func StartDrawingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req startDrawingRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		kind, err := domain.ParseGeometryKind(req.Kind)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return respondSnapshot(c, func(ctx context.Context) (domain.Snapshot, error) {
			return deps.Missions.StartDrawing(ctx, c.Params("id"), kind)
		})
	}
}

// AddVertexHandler records an operator click on the active draw.
func AddVertexHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var v domain.Coordinate
		if err := c.BodyParser(&v); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		return respondSnapshot(c, func(ctx context.Context) (domain.Snapshot, error) {
			return deps.Missions.AddVertex(ctx, c.Params("id"), v)
		})
	}
}

// CompleteDrawingHandler finishes the draw identified by handle.
func CompleteDrawingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req completeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Handle == "" {
			return errBadRequest(c, "handle is required")
		}
		return respondSnapshot(c, func(ctx context.Context) (domain.Snapshot, error) {
			return deps.Missions.Complete(ctx, c.Params("id"), req.Handle, req.Vertices)
		})
	}
}

// FinishDrawingHandler completes the active draw with the clicks placed so far.
func FinishDrawingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return respondSnapshot(c, func(ctx context.Context) (domain.Snapshot, error) {
			return deps.Missions.Finish(ctx, c.Params("id"))
		})
	}
}

// CancelDrawingHandler discards the active draw.
func CancelDrawingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return respondSnapshot(c, func(ctx context.Context) (domain.Snapshot, error) {
			return deps.Missions.Cancel(ctx, c.Params("id"))
		})
	}
}

// DiscardPendingHandler drops the polygon waiting to be imported.
func DiscardPendingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return respondSnapshot(c, func(ctx context.Context) (domain.Snapshot, error) {
			return deps.Missions.DiscardPending(ctx, c.Params("id"))
		})
	}
}

// ImportPolygonHandler splices the pending polygon next to an anchor waypoint.
func ImportPolygonHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req importPolygonRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Anchor == nil {
			return errBadRequest(c, "anchor is required")
		}
		// The direction is validated by the resolver so the operator is notified.
		return respondSnapshot(c, func(ctx context.Context) (domain.Snapshot, error) {
			return deps.Missions.ImportPolygon(ctx, c.Params("id"), *req.Anchor, domain.Direction(req.Direction))
		})
	}
}

// LegsHandler returns the waypoint list of a mission.
func LegsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		legs, err := deps.Missions.Legs(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		if legs == nil {
			legs = []domain.Leg{}
		}
		return c.JSON(legs)
	}
}

// attachmentDelivery writes an export as a file download.
type attachmentDelivery struct {
	c *fiber.Ctx
}

func (d attachmentDelivery) Deliver(_ context.Context, file domain.ExportFile) error {
	d.c.Attachment(file.Name)
	d.c.Set(fiber.HeaderContentType, file.MIMEType)
	return d.c.Send(file.Data)
}

// ExportHandler renders the route and sends it as an attachment.
// The format defaults to csv.
func ExportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		format := c.Query("format", "csv")
		_, err := deps.Missions.Export(c.UserContext(), c.Params("id"), format, attachmentDelivery{c: c})
		if err != nil {
			c.Response().Header.Del(fiber.HeaderContentDisposition)
			return errFromDomain(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return nil
	}
}

// ListExportsHandler returns the archived exports of a mission.
func ListExportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := deps.Missions.ListExports(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		offset, limit := pageParams(c)
		page, pg := paginate(records, offset, limit)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// respondSnapshot runs a session action and replies with the resulting snapshot.
func respondSnapshot(c *fiber.Ctx, action func(ctx context.Context) (domain.Snapshot, error)) error {
	snap, err := action(c.UserContext())
	if err != nil {
		return errFromDomain(c, err)
	}
	return c.JSON(snap)
}
