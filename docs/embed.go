package docs

import _ "embed"

//go:embed notify-api.openapi.yaml
var embeddedOpenAPI []byte

//go:embed swagger.html
var embeddedSwaggerHTML []byte

// OpenAPI is the notify-api OpenAPI specification.
var OpenAPI = embeddedOpenAPI

// SwaggerHTML is the Swagger UI page served at /docs.
var SwaggerHTML = embeddedSwaggerHTML
