package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/missionsketch/internal/core/domain"
)

// buildSchema creates the read-only GraphQL schema over the mission service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Float},
			"y": &graphql.Field{Type: graphql.Float},
		},
	})

	elementType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Element",
		Fields: graphql.Fields{
			"kind":    &graphql.Field{Type: graphql.String},
			"point":   &graphql.Field{Type: coordinateType},
			"polygon": &graphql.Field{Type: graphql.NewList(coordinateType)},
		},
	})

	legType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Leg",
		Fields: graphql.Fields{
			"index":         &graphql.Field{Type: graphql.Int},
			"wp":            &graphql.Field{Type: graphql.String},
			"polygon":       &graphql.Field{Type: graphql.Boolean},
			"coordinates":   &graphql.Field{Type: graphql.String},
			"distance":      &graphql.Field{Type: graphql.Float},
			"computable":    &graphql.Field{Type: graphql.Boolean},
			"distance_text": &graphql.Field{Type: graphql.String},
			"actions":       &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	missionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mission",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"name":            &graphql.Field{Type: graphql.String},
			"created_at":      &graphql.Field{Type: graphql.String},
			"state":           &graphql.Field{Type: graphql.String},
			"revision":        &graphql.Field{Type: graphql.Int},
			"hint":            &graphql.Field{Type: graphql.String},
			"route":           &graphql.Field{Type: graphql.NewList(elementType)},
			"pending_polygon": &graphql.Field{Type: graphql.NewList(coordinateType)},
			"legs":            &graphql.Field{Type: graphql.NewList(legType)},
		},
	})

	idArgs := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"missions": &graphql.Field{
				Type:        graphql.NewList(missionType),
				Description: "List live missions, oldest first",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					var out []map[string]any
					for _, m := range deps.Missions.List(p.Context) {
						snap, err := deps.Missions.Get(p.Context, m.ID)
						if err != nil {
							continue // closed in between
						}
						out = append(out, snapshotMap(snap))
					}
					return out, nil
				},
			},
			"mission": &graphql.Field{
				Type:        missionType,
				Description: "Get one mission with its route and legs",
				Args:        idArgs,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					snap, err := deps.Missions.Get(p.Context, id)
					if err != nil {
						return nil, err
					}
					return snapshotMap(snap), nil
				},
			},
			"legs": &graphql.Field{
				Type:        graphql.NewList(legType),
				Description: "Get the waypoint list of a mission",
				Args:        idArgs,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					legs, err := deps.Missions.Legs(p.Context, id)
					if err != nil {
						return nil, err
					}
					return legMaps(legs), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func coordinateMap(c domain.Coordinate) map[string]any {
	return map[string]any{"x": c.X, "y": c.Y}
}

func coordinateMaps(cs []domain.Coordinate) []map[string]any {
	out := make([]map[string]any, 0, len(cs))
	for _, c := range cs {
		out = append(out, coordinateMap(c))
	}
	return out
}

func legMaps(legs []domain.Leg) []map[string]any {
	out := make([]map[string]any, 0, len(legs))
	for _, l := range legs {
		out = append(out, map[string]any{
			"index":         l.Index,
			"wp":            l.Label,
			"polygon":       l.Polygon,
			"coordinates":   l.Text,
			"distance":      l.Distance,
			"computable":    l.Computable,
			"distance_text": l.Display,
			"actions":       l.Actions,
		})
	}
	return out
}

func snapshotMap(s domain.Snapshot) map[string]any {
	route := make([]map[string]any, 0, len(s.Route))
	for _, e := range s.Route {
		if e.IsPolygon() {
			route = append(route, map[string]any{"kind": "polygon", "polygon": coordinateMaps(e.Ring)})
			continue
		}
		route = append(route, map[string]any{"kind": "waypoint", "point": coordinateMap(e.Point)})
	}
	return map[string]any{
		"id":              s.Mission.ID,
		"name":            s.Mission.Name,
		"created_at":      s.Mission.CreatedAt.Format(time.RFC3339),
		"state":           string(s.State),
		"revision":        int(s.Revision),
		"hint":            s.Hint,
		"route":           route,
		"pending_polygon": coordinateMaps(s.Pending),
		"legs":            legMaps(s.Legs),
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
