package clientes

import (
	"regexp"
	"strings"

	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
)

// Mensajes de validación local.
const (
	MsgZoneRequired         = "Zona es obligatoria"
	MsgNameRequired         = "Nombre es obligatorio"
	MsgNeighborhoodRequired = "Barrio es obligatorio"
	MsgAddressRequired      = "Dirección es obligatoria"
	MsgClientTypeRequired   = "Tipo de Cliente es obligatorio"
	MsgPhoneRequired        = "Teléfono es obligatorio"
	MsgPhoneFormat          = `El teléfono debe comenzar con "+" y contener entre 2 y 15 dígitos numéricos`
)

var phonePattern = regexp.MustCompile(`^\+\d{2,15}$`)

// ValidatePhone devuelve el mensaje de error del teléfono, o "" si es válido.
func ValidatePhone(phone string) string {
	if phone == "" {
		return MsgPhoneRequired
	}
	if !phonePattern.MatchString(phone) {
		return MsgPhoneFormat
	}
	return ""
}

// Validate comprueba campos obligatorios y formato de teléfono. Nil si c es válido.
func Validate(c *entity.Client) []domain.FieldError {
	var errs []domain.FieldError
	required := []struct {
		field entity.Field
		value string
		msg   string
	}{
		{entity.FieldZone, c.Zone, MsgZoneRequired},
		{entity.FieldName, c.Name, MsgNameRequired},
		{entity.FieldNeighborhood, c.Neighborhood, MsgNeighborhoodRequired},
		{entity.FieldAddress, c.Address, MsgAddressRequired},
		{entity.FieldClientType, c.ClientType, MsgClientTypeRequired},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, domain.FieldError{Field: string(r.field), Message: r.msg})
		}
	}
	if msg := ValidatePhone(c.Phone); msg != "" {
		errs = append(errs, domain.FieldError{Field: string(entity.FieldPhone), Message: msg})
	}
	return errs
}
