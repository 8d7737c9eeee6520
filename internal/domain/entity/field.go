package entity

// Field nombre de un atributo del cliente tal como viaja en la API (clave JSON).
type Field string

// Atributos del cliente.
const (
	FieldID                   Field = "id"
	FieldZone                 Field = "zona"
	FieldName                 Field = "nombre"
	FieldNeighborhood         Field = "barrio"
	FieldAddress              Field = "direccion"
	FieldLocality             Field = "localidad"
	FieldPhone                Field = "telefono"
	FieldClientType           Field = "tipoCliente"
	FieldAddressDetail        Field = "detalleDireccion"
	FieldWeek                 Field = "semana"
	FieldNotes                Field = "observaciones"
	FieldDebt                 Field = "debe"
	FieldDebtDate             Field = "fechaDeuda"
	FieldPrice                Field = "precio"
	FieldLastCollection       Field = "ultimaRecoleccion"
	FieldContracting          Field = "contratacion"
	FieldNew                  Field = "nuevo"
	FieldAppointmentStatus    Field = "estadoTurno"
	FieldPriority             Field = "prioridad"
	FieldStatus               Field = "estado"
	FieldCommercialManagement Field = "gestionComercial"
	FieldCUIT                 Field = "CUIT"
	FieldCondition            Field = "condicion"
	FieldInvoice              Field = "factura"
	FieldPayment              Field = "pago"
	FieldBillingOrigin        Field = "origenFacturacion"
	FieldCompanyName          Field = "nombreEmpresa"
	FieldAdminEmail           Field = "emailAdministracion"
	FieldCommercialEmail      Field = "emailComercial"
)

// ManagedFields campos gestionables: sus valores los cura un administrador.
// Coinciden con las columnas filtrables por categoría.
var ManagedFields = []Field{
	FieldZone, FieldWeek, FieldClientType, FieldAppointmentStatus,
	FieldPriority, FieldStatus, FieldCommercialManagement,
}

// DateFields campos con fecha DD/MM/YYYY filtrables por rango.
var DateFields = []Field{FieldDebtDate, FieldLastCollection, FieldContracting}

// AllFields todos los atributos del cliente, en el orden de la API.
var AllFields = []Field{
	FieldID, FieldZone, FieldName, FieldNeighborhood, FieldAddress, FieldLocality,
	FieldPhone, FieldClientType, FieldAddressDetail, FieldWeek, FieldNotes, FieldDebt,
	FieldDebtDate, FieldPrice, FieldLastCollection, FieldContracting, FieldNew,
	FieldAppointmentStatus, FieldPriority, FieldStatus, FieldCommercialManagement,
	FieldCUIT, FieldCondition, FieldInvoice, FieldPayment, FieldBillingOrigin,
	FieldCompanyName, FieldAdminEmail, FieldCommercialEmail,
}

// IsManaged indica si f es un campo gestionable.
func (f Field) IsManaged() bool { return contains(ManagedFields, f) }

// IsDate indica si f es un campo de fecha filtrable.
func (f Field) IsDate() bool { return contains(DateFields, f) }

// IsKnown indica si f es un atributo del cliente.
func (f Field) IsKnown() bool { return contains(AllFields, f) }

func contains(list []Field, f Field) bool {
	for _, x := range list {
		if x == f {
			return true
		}
	}
	return false
}
