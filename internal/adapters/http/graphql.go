package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	datasetType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Dataset",
		Fields: graphql.Fields{
			"name":       &graphql.Field{Type: graphql.String},
			"kind":       &graphql.Field{Type: graphql.String},
			"features":   &graphql.Field{Type: graphql.Int},
			"attributes": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"loaded_at":  &graphql.Field{Type: graphql.DateTime},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LegendStats",
		Fields: graphql.Fields{
			"min":   &graphql.Field{Type: graphql.Float},
			"mean":  &graphql.Field{Type: graphql.Float},
			"max":   &graphql.Field{Type: graphql.Float},
			"count": &graphql.Field{Type: graphql.Int},
		},
	})

	circleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LegendCircle",
		Fields: graphql.Fields{
			"name":   &graphql.Field{Type: graphql.String},
			"value":  &graphql.Field{Type: graphql.Float},
			"radius": &graphql.Field{Type: graphql.Float},
			"cx":     &graphql.Field{Type: graphql.Float},
			"cy":     &graphql.Field{Type: graphql.Float},
			"label":  &graphql.Field{Type: graphql.String},
		},
	})

	legendType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Legend",
		Fields: graphql.Fields{
			"dataset":   &graphql.Field{Type: graphql.String},
			"attribute": &graphql.Field{Type: graphql.String},
			"title":     &graphql.Field{Type: graphql.String},
			"stats":     &graphql.Field{Type: statsType},
			"circles":   &graphql.Field{Type: graphql.NewList(circleType)},
		},
	})

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Marker",
		Fields: graphql.Fields{
			"feature_id": &graphql.Field{Type: graphql.String},
			"country":    &graphql.Field{Type: graphql.String},
			"location":   &graphql.Field{Type: geoPointType},
			"attribute":  &graphql.Field{Type: graphql.String},
			"radius":     &graphql.Field{Type: graphql.Float},
			"value": &graphql.Field{
				Type:        graphql.Float,
				Description: "null when the feature has no value for the attribute",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					m := p.Source.(domain.Marker)
					if !m.Value.Present {
						return nil, nil
					}
					return m.Value.Number, nil
				},
			},
			"popup_title": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Marker).Popup.Title, nil
				},
			},
			"popup_body": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Marker).Popup.Body, nil
				},
			},
		},
	})

	layerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Layer",
		Fields: graphql.Fields{
			"name":      &graphql.Field{Type: graphql.String},
			"overlay":   &graphql.Field{Type: graphql.String},
			"visible":   &graphql.Field{Type: graphql.Boolean},
			"attribute": &graphql.Field{Type: graphql.String},
			"markers":   &graphql.Field{Type: graphql.NewList(markerType)},
			"legend":    &graphql.Field{Type: legendType},
		},
	})

	sequenceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Sequence",
		Fields: graphql.Fields{
			"index": &graphql.Field{Type: graphql.Int},
			"steps": &graphql.Field{Type: graphql.Int},
		},
	})

	frameType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Frame",
		Fields: graphql.Fields{
			"generation": &graphql.Field{Type: graphql.Int},
			"year":       &graphql.Field{Type: graphql.String},
			"sequence":   &graphql.Field{Type: sequenceType},
			"layers":     &graphql.Field{Type: graphql.NewList(layerType)},
		},
	})

	eventType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SequenceEvent",
		Fields: graphql.Fields{
			"generation": &graphql.Field{Type: graphql.Int},
			"action":     &graphql.Field{Type: graphql.String},
			"year":       &graphql.Field{Type: graphql.String},
			"sequence":   &graphql.Field{Type: sequenceType},
		},
	})

	datasetAttrArgs := graphql.FieldConfigArgument{
		"dataset":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"attribute": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"datasets": &graphql.Field{
				Type:        graphql.NewList(datasetType),
				Description: "List the installed datasets",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Datasets.List(p.Context)
				},
			},
			"dataset": &graphql.Field{
				Type:        datasetType,
				Description: "Get a dataset by name",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ds, err := deps.Datasets.Get(p.Context, p.Args["name"].(string))
					if err != nil {
						return nil, err
					}
					return ds.Summary(), nil
				},
			},
			"stats": &graphql.Field{
				Type:        statsType,
				Description: "Min, mean and max of an attribute (selected year by default)",
				Args:        datasetAttrArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Datasets.Stats(p.Context, p.Args["dataset"].(string), p.Args["attribute"].(string))
				},
			},
			"legend": &graphql.Field{
				Type:        legendType,
				Description: "Legend of an attribute (selected year by default)",
				Args:        datasetAttrArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Datasets.Legend(p.Context, p.Args["dataset"].(string), p.Args["attribute"].(string))
				},
			},
			"frame": &graphql.Field{
				Type:        frameType,
				Description: "The map at index, or at the selected year when index is omitted",
				Args: graphql.FieldConfigArgument{
					"index": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if idx, ok := p.Args["index"].(int); ok {
						return deps.Frames.At(p.Context, idx)
					}
					return deps.Frames.Current(p.Context)
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"forward": &graphql.Field{
				Type:        eventType,
				Description: "Step to the next year",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sequence.Forward(p.Context)
				},
			},
			"reverse": &graphql.Field{
				Type:        eventType,
				Description: "Step to the previous year",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sequence.Reverse(p.Context)
				},
			},
			"setSequence": &graphql.Field{
				Type:        eventType,
				Description: "Jump to a year index",
				Args: graphql.FieldConfigArgument{
					"index": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sequence.SetDirect(p.Context, p.Args["index"].(int))
				},
			},
			"setLayerVisible": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Show or hide an overlay layer",
				Args: graphql.FieldConfigArgument{
					"name":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"visible": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Boolean)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					visible := p.Args["visible"].(bool)
					if err := deps.Sequence.SetVisible(p.Args["name"].(string), visible); err != nil {
						return nil, err
					}
					return visible, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
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
