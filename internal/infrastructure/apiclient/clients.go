package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ecolink/crud-clientes/internal/application/dto"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/repository"
)

var _ repository.ClientGateway = (*ClientsAPI)(nil)

// ClientsAPI implementa ClientGateway sobre /clientes.
type ClientsAPI struct {
	c *Client
}

// List GET /clientes.
func (a *ClientsAPI) List(ctx context.Context) ([]entity.Client, error) {
	var out []dto.ClientDTO
	err := a.c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/clientes",
		resource: "Clientes",
		validate: dto.ClientSchema.ValidateArray,
	}, &out)
	if err != nil {
		return nil, err
	}
	clients := make([]entity.Client, 0, len(out))
	for i := range out {
		cl, err := out[i].ToEntity()
		if err != nil {
			return nil, schemaError("/clientes", err, a.c.log)
		}
		clients = append(clients, cl)
	}
	return clients, nil
}

// Get GET /clientes/:id.
func (a *ClientsAPI) Get(ctx context.Context, id int64) (*entity.Client, error) {
	return a.single(ctx, http.MethodGet, fmt.Sprintf("/clientes/%d", id), nil)
}

// Create POST /clientes.
func (a *ClientsAPI) Create(ctx context.Context, client *entity.Client) (*entity.Client, error) {
	return a.single(ctx, http.MethodPost, "/clientes", dto.NewClientRequest(client))
}

// Update PUT /clientes/:id con el registro completo.
func (a *ClientsAPI) Update(ctx context.Context, id int64, client *entity.Client) (*entity.Client, error) {
	return a.single(ctx, http.MethodPut, fmt.Sprintf("/clientes/%d", id), dto.NewClientRequest(client))
}

// Delete DELETE /clientes/:id.
func (a *ClientsAPI) Delete(ctx context.Context, id int64) error {
	return a.c.do(ctx, call{
		method:   http.MethodDelete,
		path:     fmt.Sprintf("/clientes/%d", id),
		resource: "Cliente",
	}, nil)
}

func (a *ClientsAPI) single(ctx context.Context, method, path string, body any) (*entity.Client, error) {
	var out dto.ClientDTO
	err := a.c.do(ctx, call{
		method:   method,
		path:     path,
		body:     body,
		resource: "Cliente",
		validate: dto.ClientSchema.Validate,
	}, &out)
	if err != nil {
		return nil, err
	}
	cl, err := out.ToEntity()
	if err != nil {
		return nil, schemaError(path, err, a.c.log)
	}
	return &cl, nil
}
