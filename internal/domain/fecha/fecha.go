// Package fecha convierte entre el formato de almacenamiento de fechas (DD/MM/YYYY)
// y el formato de entrada de formularios (YYYY-MM-DD).
package fecha

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout formato con el que se guardan las fechas del cliente.
const Layout = "02/01/2006"

var storedPattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

// ToStorage convierte "YYYY-MM-DD" en "DD/MM/YYYY". No valida el calendario:
// sólo reordena las partes. Vacío devuelve vacío.
func ToStorage(iso string) string {
	if iso == "" {
		return ""
	}
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return iso
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// ToInput convierte "DD/MM/YYYY" en "YYYY-MM-DD". Cualquier otra entrada
// (nil, vacía o mal formada) devuelve "".
func ToInput(stored *string) string {
	if stored == nil || !storedPattern.MatchString(*stored) {
		return ""
	}
	s := *stored
	return s[6:10] + "-" + s[3:5] + "-" + s[0:2]
}

// Valid indica si s tiene la forma DD/MM/YYYY.
func Valid(s string) bool {
	return storedPattern.MatchString(s)
}

// Parse interpreta una fecha DD/MM/YYYY con granularidad de día (UTC, 00:00).
// Los componentes fuera de rango se normalizan como en time.Date (31/02 pasa a marzo).
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !storedPattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("fecha %q no tiene formato DD/MM/YYYY", s)
	}
	day, _ := strconv.Atoi(s[0:2])
	month, _ := strconv.Atoi(s[3:5])
	year, _ := strconv.Atoi(s[6:10])
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// Format devuelve t en formato de almacenamiento.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Today fecha de hoy en formato de almacenamiento.
func Today() string {
	return Format(time.Now())
}
