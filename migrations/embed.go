// Package migrations contiene los scripts SQL versionados del esquema.
// Nombres: NNNN_descripcion.up.sql / NNNN_descripcion.down.sql.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
