package handlers

import (
	_ "embed"
	"net/http"
)

//go:embed swagger.json
var swaggerSpec []byte

// SwaggerSpec serves the embedded OpenAPI document that the swagger UI loads.
func SwaggerSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(swaggerSpec)
}
