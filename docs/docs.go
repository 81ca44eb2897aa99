// Package docs holds the OpenAPI description served under /swagger. It is
// regenerated with `swag init -g cmd/server/main.go` after handler
// annotations change.
package docs

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
    "paths": {
        "/lists": {
            "post": {
                "tags": ["lists"],
                "summary": "Create a shopping list",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.ItemsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.ShoppingList"}},
                    "400": {"description": "Bad Request", "schema": {"type": "string"}}
                }
            }
        },
        "/lists/{listId}": {
            "get": {
                "tags": ["lists"],
                "summary": "Get a shopping list",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "listId", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ShoppingList"}},
                    "404": {"description": "Not Found", "schema": {"type": "string"}}
                }
            },
            "patch": {
                "tags": ["lists"],
                "summary": "Replace the items of a shopping list",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "listId", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.ItemsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ShoppingList"}},
                    "400": {"description": "Bad Request", "schema": {"type": "string"}},
                    "404": {"description": "Not Found", "schema": {"type": "string"}}
                }
            }
        },
        "/api/lists/share": {
            "post": {
                "tags": ["shares"],
                "summary": "Share a shopping list",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.CreateShareRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.ShareMetadata"}},
                    "400": {"description": "Bad Request", "schema": {"type": "string"}}
                }
            }
        },
        "/api/lists/share/{shareId}": {
            "get": {
                "tags": ["shares"],
                "summary": "Get a shared list",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "shareId", "required": true},
                    {"type": "integer", "in": "query", "name": "since", "description": "Last known updatedAt in milliseconds"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SharedList"}},
                    "304": {"description": "Not Modified"},
                    "404": {"description": "Not Found", "schema": {"type": "string"}}
                }
            },
            "patch": {
                "tags": ["shares"],
                "summary": "Replace the items of a shared list",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "shareId", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.ItemsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SharedList"}},
                    "404": {"description": "Not Found", "schema": {"type": "string"}}
                }
            }
        },
        "/api/lists/share/{shareId}/ws": {
            "get": {
                "tags": ["shares"],
                "summary": "Watch a shared list",
                "parameters": [
                    {"type": "string", "in": "path", "name": "shareId", "required": true}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "404": {"description": "Not Found", "schema": {"type": "string"}}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["system"],
                "summary": "Health check",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.CreateShareRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/models.ShoppingItem"}},
                "recipes": {"type": "array", "items": {"type": "string"}}
            }
        },
        "api.HealthResponse": {
            "type": "object",
            "properties": {"status": {"type": "string", "example": "ok"}}
        },
        "api.ItemsRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/models.ShoppingItem"}}
            }
        },
        "models.ShareMetadata": {
            "type": "object",
            "properties": {
                "shareId": {"type": "string"},
                "url": {"type": "string"},
                "expiresAt": {"type": "integer"}
            }
        },
        "models.SharedList": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/models.ShoppingItem"}},
                "recipes": {"type": "array", "items": {"type": "string"}},
                "metadata": {"$ref": "#/definitions/models.SharedListMetadata"},
                "viewsCount": {"type": "integer"}
            }
        },
        "models.SharedListMetadata": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "integer"},
                "updatedAt": {"type": "integer"}
            }
        },
        "models.ShoppingItem": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string"},
                "recipeId": {"type": "string"},
                "recipeName": {"type": "string"},
                "ingredientName": {"type": "string"},
                "amount": {"type": "string"},
                "checked": {"type": "boolean"}
            }
        },
        "models.ShoppingList": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/models.ShoppingItem"}},
                "createdAt": {"type": "integer"},
                "updatedAt": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Shopping List API",
	Description:      "Owned and shared recipe shopping lists.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
