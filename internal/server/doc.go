// Package server exposes conversions over HTTP.
//
// Routes:
//
//	GET  /status                  liveness
//	GET  /stats                   usage counters
//	POST /convert                 rows mode, or ?mode=rows|config|config_schema
//	POST /convert/config          config mode
//	POST /convert/config_schema   config_schema mode
//
// Uploads are multipart forms with a "file" part (.xlsx or .csv) and, for
// config_schema, a "schema" part or form value holding a JSON or YAML schema.
package server
