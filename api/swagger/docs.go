// Package swagger registers the OpenAPI document served under /swagger.
// Regenerate with `swag init -g cmd/api/main.go -o api/swagger`.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/api/auth/register": {"post": {"tags": ["auth"], "summary": "Register a user", "responses": {"201": {"description": "Created"}, "409": {"description": "Email already registered"}}}},
        "/api/auth/login": {"post": {"tags": ["auth"], "summary": "Log in", "responses": {"200": {"description": "Token pair"}, "401": {"description": "Bad credentials"}}}},
        "/api/auth/refresh": {"post": {"tags": ["auth"], "summary": "Rotate tokens", "responses": {"200": {"description": "Token pair"}}}},
        "/api/auth/logout": {"post": {"tags": ["auth"], "summary": "Clear auth cookies", "responses": {"200": {"description": "OK"}}}},
        "/api/auth/forgot-password": {"post": {"tags": ["auth"], "summary": "Request a password reset", "responses": {"200": {"description": "Generic acknowledgement"}}}},
        "/api/auth/me": {"get": {"tags": ["auth"], "security": [{"BearerAuth": []}], "summary": "Current user", "responses": {"200": {"description": "OK"}}}},
        "/api/users": {"get": {"tags": ["users"], "security": [{"BearerAuth": []}], "summary": "List users", "responses": {"200": {"description": "OK"}}}},
        "/api/products": {
            "get": {"tags": ["products"], "security": [{"BearerAuth": []}], "summary": "List products", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["products"], "security": [{"BearerAuth": []}], "summary": "Create a product", "responses": {"201": {"description": "Created"}}}
        },
        "/api/customers": {
            "get": {"tags": ["customers"], "security": [{"BearerAuth": []}], "summary": "List customers", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["customers"], "security": [{"BearerAuth": []}], "summary": "Create a customer", "responses": {"201": {"description": "Created"}}}
        },
        "/api/promotions": {
            "get": {"tags": ["promotions"], "security": [{"BearerAuth": []}], "summary": "List promotions", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["promotions"], "security": [{"BearerAuth": []}], "summary": "Create a promotion", "responses": {"201": {"description": "Created"}}}
        },
        "/api/promotions/{id}": {"patch": {"tags": ["promotions"], "security": [{"BearerAuth": []}], "summary": "Update a promotion", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
        "/api/sales": {
            "get": {"tags": ["sales"], "security": [{"BearerAuth": []}], "summary": "List sales", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["sales"], "security": [{"BearerAuth": []}], "summary": "Create a sale", "parameters": [{"type": "string", "name": "X-Idempotency-Key", "in": "header"}], "responses": {"201": {"description": "Created"}, "400": {"description": "Insufficient stock or points"}}}
        },
        "/api/sales/{id}/void": {"patch": {"tags": ["sales"], "security": [{"BearerAuth": []}], "summary": "Void a sale", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Already voided"}}}},
        "/api/purchases": {
            "get": {"tags": ["purchases"], "security": [{"BearerAuth": []}], "summary": "List purchases", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["purchases"], "security": [{"BearerAuth": []}], "summary": "Create a purchase", "responses": {"201": {"description": "Created"}}}
        },
        "/api/returns": {
            "get": {"tags": ["returns"], "security": [{"BearerAuth": []}], "summary": "List returns", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["returns"], "security": [{"BearerAuth": []}], "summary": "Create a return", "responses": {"201": {"description": "Created"}}}
        },
        "/api/inventory/transactions": {
            "get": {"tags": ["inventory"], "security": [{"BearerAuth": []}], "summary": "List stock movements", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["inventory"], "security": [{"BearerAuth": []}], "summary": "Manual stock adjustment", "responses": {"201": {"description": "Created"}}}
        },
        "/api/inventory/counts": {
            "get": {"tags": ["inventory"], "security": [{"BearerAuth": []}], "summary": "List stock-takes", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["inventory"], "security": [{"BearerAuth": []}], "summary": "Record a stock-take", "responses": {"201": {"description": "Created"}}}
        },
        "/api/inventory/alerts": {"get": {"tags": ["inventory"], "security": [{"BearerAuth": []}], "summary": "Products nearing expiration", "responses": {"200": {"description": "OK"}}}},
        "/api/reports/summary": {"get": {"tags": ["reports"], "security": [{"BearerAuth": []}], "summary": "Sales and inventory summary", "responses": {"200": {"description": "OK"}}}},
        "/api/settings": {"get": {"tags": ["settings"], "security": [{"BearerAuth": []}], "summary": "List settings", "responses": {"200": {"description": "OK"}}}},
        "/api/settings/{key}": {"put": {"tags": ["settings"], "security": [{"BearerAuth": []}], "summary": "Upsert a setting", "parameters": [{"type": "string", "name": "key", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/roles": {"get": {"tags": ["roles"], "security": [{"BearerAuth": []}], "summary": "List roles", "responses": {"200": {"description": "OK"}}}},
        "/api/audit-logs": {"get": {"tags": ["audit"], "security": [{"BearerAuth": []}], "summary": "Get audit logs", "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "SmartPOS API",
	Description:      "Point-of-sale backend: sales, purchasing, returns, stock ledger and reporting.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
