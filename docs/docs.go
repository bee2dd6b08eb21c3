// Package docs holds the OpenAPI description served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/api/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Open a session",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "Session token"}, "401": {"description": "Invalid credentials"}, "403": {"description": "Account disabled"}}
            }
        },
        "/api/auth/logout": {"post": {"tags": ["Auth"], "summary": "Close the current session", "responses": {"200": {"description": "Logged out"}}}},
        "/api/auth/me": {"get": {"tags": ["Auth"], "security": [{"BearerAuth": []}], "summary": "Current user", "responses": {"200": {"description": "User"}}}},
        "/api/users": {
            "get": {"tags": ["Users"], "security": [{"BearerAuth": []}], "summary": "List users", "responses": {"200": {"description": "Users"}}},
            "post": {"tags": ["Users"], "security": [{"BearerAuth": []}], "summary": "Create a user", "responses": {"201": {"description": "Created"}, "409": {"description": "Username taken"}}}
        },
        "/api/products": {
            "get": {"tags": ["Catalog"], "security": [{"BearerAuth": []}], "summary": "List products", "parameters": [{"in": "query", "name": "search", "type": "string"}, {"in": "query", "name": "categoryId", "type": "string"}], "responses": {"200": {"description": "Products"}}},
            "post": {"tags": ["Catalog"], "security": [{"BearerAuth": []}], "summary": "Create a product", "responses": {"201": {"description": "Created"}, "409": {"description": "Code taken"}}}
        },
        "/api/categories": {"get": {"tags": ["Catalog"], "security": [{"BearerAuth": []}], "summary": "List categories", "responses": {"200": {"description": "Categories"}}}},
        "/api/invoices/quote": {"post": {"tags": ["Sales"], "security": [{"BearerAuth": []}], "summary": "Build an invoice without committing it", "responses": {"200": {"description": "Invoice"}, "400": {"description": "Insufficient stock"}}}},
        "/api/sales/cash": {"post": {"tags": ["Sales"], "security": [{"BearerAuth": []}], "summary": "Finalize a cash sale", "responses": {"201": {"description": "Sale"}, "400": {"description": "Insufficient stock or payment"}}}},
        "/api/sales/installment": {"post": {"tags": ["Sales"], "security": [{"BearerAuth": []}], "summary": "Finalize an installment sale", "responses": {"201": {"description": "Sale and contract"}}}},
        "/api/sales": {"get": {"tags": ["Sales"], "security": [{"BearerAuth": []}], "summary": "List sales", "parameters": [{"in": "query", "name": "start", "type": "string"}, {"in": "query", "name": "end", "type": "string"}], "responses": {"200": {"description": "Sales"}}}},
        "/api/installments": {"get": {"tags": ["Installments"], "security": [{"BearerAuth": []}], "summary": "List contracts", "parameters": [{"in": "query", "name": "status", "type": "string"}], "responses": {"200": {"description": "Contracts"}}}},
        "/api/installments/{id}/payments": {"post": {"tags": ["Installments"], "security": [{"BearerAuth": []}], "summary": "Record a payment", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"201": {"description": "Receipt"}, "409": {"description": "Overpayment needs confirmation"}}}},
        "/api/reports/sales": {"get": {"tags": ["Reports"], "security": [{"BearerAuth": []}], "summary": "Sales report", "responses": {"200": {"description": "Report"}}}},
        "/api/reports/daily": {"get": {"tags": ["Reports"], "security": [{"BearerAuth": []}], "summary": "Daily report", "responses": {"200": {"description": "Report"}}}},
        "/api/transactions": {"get": {"tags": ["Audit"], "security": [{"BearerAuth": []}], "summary": "Audit log", "parameters": [{"in": "query", "name": "actionType", "type": "string"}], "responses": {"200": {"description": "Transactions"}}}},
        "/api/settings": {
            "get": {"tags": ["Settings"], "security": [{"BearerAuth": []}], "summary": "Store settings", "responses": {"200": {"description": "Settings"}}},
            "put": {"tags": ["Settings"], "security": [{"BearerAuth": []}], "summary": "Update store settings", "responses": {"200": {"description": "Settings"}}}
        },
        "/api/backup": {
            "get": {"tags": ["Backup"], "security": [{"BearerAuth": []}], "summary": "Download a backup", "responses": {"200": {"description": "Backup document"}}},
            "post": {"tags": ["Backup"], "security": [{"BearerAuth": []}], "summary": "Write a backup file", "responses": {"201": {"description": "Backup path"}}}
        },
        "/api/backup/restore": {"post": {"tags": ["Backup"], "security": [{"BearerAuth": []}], "summary": "Restore a backup", "responses": {"200": {"description": "Restored"}, "400": {"description": "Invalid backup"}}}},
        "/health": {"get": {"tags": ["Health"], "summary": "Health check", "responses": {"200": {"description": "Healthy"}, "503": {"description": "Storage unavailable"}}}}
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "rememberMe": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "POS Service API",
	Description:      "Point of sale ledger: catalog, sales, installments, reports and backups.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
