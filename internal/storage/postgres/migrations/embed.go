// migrations содержит SQL-миграции схемы, встраиваемые в бинарник
// и накатываемые goose на старте сервиса.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
