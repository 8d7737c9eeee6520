package entity

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// NullPlaceholder texto con el que se representa un valor nulo al filtrar
// y al listar valores únicos.
const NullPlaceholder = "N/A"

// Client representa un cliente del servicio de recolección.
// Los campos puntero son opcionales (null en la API). Las fechas se guardan como DD/MM/YYYY.
type Client struct {
	ID                   int64
	Zone                 string
	Name                 string
	Neighborhood         string
	Address              string
	Locality             *string
	Phone                string
	ClientType           string
	AddressDetail        *string
	Week                 *string
	Notes                *string
	Debt                 *decimal.Decimal
	DebtDate             *string
	Price                *decimal.Decimal
	LastCollection       *string
	Contracting          *string
	New                  *bool
	AppointmentStatus    *string
	Priority             *string
	Status               *string
	CommercialManagement *string
	CUIT                 *string
	Condition            *string
	Invoice              *string
	Payment              *string
	BillingOrigin        *string
	CompanyName          *string
	AdminEmail           *string
	CommercialEmail      *string
}

// NewDraft devuelve un cliente vacío con los valores por defecto de un alta.
func NewDraft() Client {
	nuevo := true
	return Client{New: &nuevo}
}

// Value devuelve el valor de f como texto y si es no nulo.
// Los importes usan la representación decimal; los booleanos "true"/"false".
func (c *Client) Value(f Field) (string, bool) {
	switch f {
	case FieldID:
		return strconv.FormatInt(c.ID, 10), true
	case FieldZone:
		return c.Zone, true
	case FieldName:
		return c.Name, true
	case FieldNeighborhood:
		return c.Neighborhood, true
	case FieldAddress:
		return c.Address, true
	case FieldPhone:
		return c.Phone, true
	case FieldClientType:
		return c.ClientType, true
	case FieldDebt:
		return decimalValue(c.Debt)
	case FieldPrice:
		return decimalValue(c.Price)
	case FieldNew:
		if c.New == nil {
			return "", false
		}
		return strconv.FormatBool(*c.New), true
	}
	if p := c.optional(f); p != nil {
		return stringValue(*p)
	}
	return "", false
}

// Date devuelve el puntero al campo de fecha f, o nil si f no es de fecha.
func (c *Client) Date(f Field) *string {
	switch f {
	case FieldDebtDate:
		return c.DebtDate
	case FieldLastCollection:
		return c.LastCollection
	case FieldContracting:
		return c.Contracting
	}
	return nil
}

// optional devuelve la dirección del campo de texto opcional f.
func (c *Client) optional(f Field) **string {
	switch f {
	case FieldLocality:
		return &c.Locality
	case FieldAddressDetail:
		return &c.AddressDetail
	case FieldWeek:
		return &c.Week
	case FieldNotes:
		return &c.Notes
	case FieldDebtDate:
		return &c.DebtDate
	case FieldLastCollection:
		return &c.LastCollection
	case FieldContracting:
		return &c.Contracting
	case FieldAppointmentStatus:
		return &c.AppointmentStatus
	case FieldPriority:
		return &c.Priority
	case FieldStatus:
		return &c.Status
	case FieldCommercialManagement:
		return &c.CommercialManagement
	case FieldCUIT:
		return &c.CUIT
	case FieldCondition:
		return &c.Condition
	case FieldInvoice:
		return &c.Invoice
	case FieldPayment:
		return &c.Payment
	case FieldBillingOrigin:
		return &c.BillingOrigin
	case FieldCompanyName:
		return &c.CompanyName
	case FieldAdminEmail:
		return &c.AdminEmail
	case FieldCommercialEmail:
		return &c.CommercialEmail
	}
	return nil
}

// SetText asigna un campo de texto (obligatorio u opcional). Un valor vacío en
// un campo opcional se guarda como nulo. Devuelve false si f no es de texto.
func (c *Client) SetText(f Field, v string) bool {
	switch f {
	case FieldZone:
		c.Zone = v
	case FieldName:
		c.Name = v
	case FieldNeighborhood:
		c.Neighborhood = v
	case FieldAddress:
		c.Address = v
	case FieldPhone:
		c.Phone = v
	case FieldClientType:
		c.ClientType = v
	default:
		p := c.optional(f)
		if p == nil {
			return false
		}
		if v == "" {
			*p = nil
		} else {
			s := v
			*p = &s
		}
	}
	return true
}

// ReplaceManaged sustituye old por new en el campo gestionable f. Devuelve true si cambió.
func (c *Client) ReplaceManaged(f Field, old, new string) bool {
	if v, ok := c.Value(f); !ok || v != old {
		return false
	}
	return c.SetText(f, new)
}

func stringValue(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

func decimalValue(d *decimal.Decimal) (string, bool) {
	if d == nil {
		return "", false
	}
	return d.String(), true
}
