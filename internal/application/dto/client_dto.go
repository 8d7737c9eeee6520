package dto

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ecolink/crud-clientes/internal/domain/entity"
)

// ClientDTO representación JSON de un cliente. Los campos opcionales viajan como null.
type ClientDTO struct {
	ID                   int64        `json:"id"`
	Zona                 string       `json:"zona"`
	Nombre               string       `json:"nombre"`
	Barrio               string       `json:"barrio"`
	Direccion            string       `json:"direccion"`
	Localidad            *string      `json:"localidad"`
	Telefono             string       `json:"telefono"`
	TipoCliente          string       `json:"tipoCliente"`
	DetalleDireccion     *string      `json:"detalleDireccion"`
	Semana               *string      `json:"semana"`
	Observaciones        *string      `json:"observaciones"`
	Debe                 *json.Number `json:"debe"`
	FechaDeuda           *string      `json:"fechaDeuda"`
	Precio               *json.Number `json:"precio"`
	UltimaRecoleccion    *string      `json:"ultimaRecoleccion"`
	Contratacion         *string      `json:"contratacion"`
	Nuevo                *bool        `json:"nuevo,omitempty"`
	EstadoTurno          *string      `json:"estadoTurno"`
	Prioridad            *string      `json:"prioridad"`
	Estado               *string      `json:"estado"`
	GestionComercial     *string      `json:"gestionComercial"`
	CUIT                 *string      `json:"CUIT"`
	Condicion            *string      `json:"condicion"`
	Factura              *string      `json:"factura"`
	Pago                 *string      `json:"pago"`
	OrigenFacturacion    *string      `json:"origenFacturacion"`
	NombreEmpresa        *string      `json:"nombreEmpresa"`
	EmailAdministracion  *string      `json:"emailAdministracion"`
	EmailComercial       *string      `json:"emailComercial"`
}

// ClientRequest cuerpo de alta/edición: el cliente sin id.
type ClientRequest struct {
	ClientDTO
	ID *int64 `json:"id,omitempty"`
}

func nullableString(name string) Key { return Key{Name: name, Kind: KindString, Nullable: true} }

// ClientSchema esquema estricto de un cliente en respuestas.
var ClientSchema = Schema{
	{Name: "id", Kind: KindNumber},
	{Name: "zona", Kind: KindString},
	{Name: "nombre", Kind: KindString},
	{Name: "barrio", Kind: KindString},
	{Name: "direccion", Kind: KindString},
	nullableString("localidad"),
	{Name: "telefono", Kind: KindString},
	{Name: "tipoCliente", Kind: KindString},
	nullableString("detalleDireccion"),
	nullableString("semana"),
	nullableString("observaciones"),
	{Name: "debe", Kind: KindNumber, Nullable: true},
	nullableString("fechaDeuda"),
	{Name: "precio", Kind: KindNumber, Nullable: true},
	nullableString("ultimaRecoleccion"),
	nullableString("contratacion"),
	{Name: "nuevo", Kind: KindBool, Optional: true},
	nullableString("estadoTurno"),
	nullableString("prioridad"),
	nullableString("estado"),
	nullableString("gestionComercial"),
	nullableString("CUIT"),
	nullableString("condicion"),
	nullableString("factura"),
	nullableString("pago"),
	nullableString("origenFacturacion"),
	nullableString("nombreEmpresa"),
	nullableString("emailAdministracion"),
	nullableString("emailComercial"),
}

// FromClient construye el DTO de c.
func FromClient(c *entity.Client) ClientDTO {
	return ClientDTO{
		ID:                  c.ID,
		Zona:                c.Zone,
		Nombre:              c.Name,
		Barrio:              c.Neighborhood,
		Direccion:           c.Address,
		Localidad:           c.Locality,
		Telefono:            c.Phone,
		TipoCliente:         c.ClientType,
		DetalleDireccion:    c.AddressDetail,
		Semana:              c.Week,
		Observaciones:       c.Notes,
		Debe:                fromDecimal(c.Debt),
		FechaDeuda:          c.DebtDate,
		Precio:              fromDecimal(c.Price),
		UltimaRecoleccion:   c.LastCollection,
		Contratacion:        c.Contracting,
		Nuevo:               c.New,
		EstadoTurno:         c.AppointmentStatus,
		Prioridad:           c.Priority,
		Estado:              c.Status,
		GestionComercial:    c.CommercialManagement,
		CUIT:                c.CUIT,
		Condicion:           c.Condition,
		Factura:             c.Invoice,
		Pago:                c.Payment,
		OrigenFacturacion:   c.BillingOrigin,
		NombreEmpresa:       c.CompanyName,
		EmailAdministracion: c.AdminEmail,
		EmailComercial:      c.CommercialEmail,
	}
}

// NewClientRequest cuerpo de alta/edición para c. localidad siempre viaja como null.
func NewClientRequest(c *entity.Client) ClientRequest {
	d := FromClient(c)
	d.Localidad = nil
	return ClientRequest{ClientDTO: d}
}

// ToEntity convierte el DTO al cliente de dominio.
func (d *ClientDTO) ToEntity() (entity.Client, error) {
	debe, err := toDecimal("debe", d.Debe)
	if err != nil {
		return entity.Client{}, err
	}
	precio, err := toDecimal("precio", d.Precio)
	if err != nil {
		return entity.Client{}, err
	}
	return entity.Client{
		ID:                   d.ID,
		Zone:                 d.Zona,
		Name:                 d.Nombre,
		Neighborhood:         d.Barrio,
		Address:              d.Direccion,
		Locality:             d.Localidad,
		Phone:                d.Telefono,
		ClientType:           d.TipoCliente,
		AddressDetail:        d.DetalleDireccion,
		Week:                 d.Semana,
		Notes:                d.Observaciones,
		Debt:                 debe,
		DebtDate:             d.FechaDeuda,
		Price:                precio,
		LastCollection:       d.UltimaRecoleccion,
		Contracting:          d.Contratacion,
		New:                  d.Nuevo,
		AppointmentStatus:    d.EstadoTurno,
		Priority:             d.Prioridad,
		Status:               d.Estado,
		CommercialManagement: d.GestionComercial,
		CUIT:                 d.CUIT,
		Condition:            d.Condicion,
		Invoice:              d.Factura,
		Payment:              d.Pago,
		BillingOrigin:        d.OrigenFacturacion,
		CompanyName:          d.NombreEmpresa,
		AdminEmail:           d.EmailAdministracion,
		CommercialEmail:      d.EmailComercial,
	}, nil
}

func fromDecimal(d *decimal.Decimal) *json.Number {
	if d == nil {
		return nil
	}
	n := json.Number(d.String())
	return &n
}

func toDecimal(name string, n *json.Number) (*decimal.Decimal, error) {
	if n == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s no es un importe válido: %v", ErrSchemaMismatch, name, err)
	}
	return &d, nil
}
