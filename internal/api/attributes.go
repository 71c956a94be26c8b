package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/blnd/internal/api/models"
	"github.com/smazurov/blnd/internal/attr"
)

// registerAttributeRoutes exposes the attribute table. Values travel as the
// raw attribute text so clients see exactly what a sysfs read would return.
func (s *Server) registerAttributeRoutes() {
	if s.options.Attributes == nil {
		s.logger.Debug("Attribute table not available, skipping attribute routes")
		return
	}
	table := s.options.Attributes

	huma.Register(s.api, huma.Operation{
		OperationID: "list-attributes",
		Method:      http.MethodGet,
		Path:        "/api/attributes",
		Summary:     "List Attributes",
		Description: "Read every attribute",
		Tags:        []string{"attributes"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.AttributeListResponse, error) {
		names := table.Names()
		out := make([]models.AttributeData, 0, len(names))
		for _, name := range names {
			value, err := table.Read(name)
			if err != nil {
				return nil, huma.Error500InternalServerError("Failed to read attribute", err)
			}
			out = append(out, models.AttributeData{Name: name, Value: value, Writable: table.Writable(name)})
		}
		return &models.AttributeListResponse{Body: models.AttributeListData{Attributes: out}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-attribute",
		Method:      http.MethodGet,
		Path:        "/api/attributes/{name}",
		Summary:     "Read Attribute",
		Description: "Read one attribute, formatted as an unsigned decimal and a newline",
		Tags:        []string{"attributes"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(_ context.Context, input *models.AttributePath) (*models.AttributeResponse, error) {
		value, err := table.Read(input.Name)
		if err != nil {
			return nil, attributeError(err)
		}
		return &models.AttributeResponse{
			Body: models.AttributeData{Name: input.Name, Value: value, Writable: table.Writable(input.Name)},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "write-attribute",
		Method:      http.MethodPut,
		Path:        "/api/attributes/{name}",
		Summary:     "Write Attribute",
		Description: "Write text to an attribute. Malformed or out of range values are logged and ignored; " +
			"the response carries the value read back afterwards.",
		Tags:     []string{"attributes"},
		Security: withAuth(),
		Errors:   []int{400, 401, 404},
	}, func(_ context.Context, input *models.AttributeWriteRequest) (*models.AttributeWriteResponse, error) {
		n, err := table.Write(input.Name, input.Body.Value)
		if err != nil {
			return nil, attributeError(err)
		}
		value, err := table.Read(input.Name)
		if err != nil {
			return nil, attributeError(err)
		}
		return &models.AttributeWriteResponse{
			Body: models.AttributeWriteData{
				AttributeData: models.AttributeData{Name: input.Name, Value: value, Writable: true},
				Consumed:      n,
			},
		}, nil
	})
}

func attributeError(err error) error {
	switch {
	case errors.Is(err, attr.ErrUnknownAttribute):
		return huma.Error404NotFound("Attribute not found", err)
	case errors.Is(err, attr.ErrReadOnly):
		return huma.Error400BadRequest("Attribute is read-only", err)
	default:
		return huma.Error500InternalServerError("Attribute access failed", err)
	}
}
