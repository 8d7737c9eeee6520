// Package migrations contiene el esquema del almacén local de sesión.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
