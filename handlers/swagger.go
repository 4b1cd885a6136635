package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves the API description.
// - GET /swagger/index.html  -> Swagger UI loading doc.json
// - GET /swagger/doc.json    -> OpenAPI document
func RegisterSwagger(r gin.IRoutes) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})
	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>catatan API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "catatan", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Summary": { "type": "object", "properties": { "id": {"type":"string"}, "display_name": {"type":"string"} } },
      "TrashedSummary": { "type": "object", "properties": { "id": {"type":"string"}, "display_name": {"type":"string"}, "trashed_at": {"type":"string","format":"date-time"} } },
      "Page": { "type": "object", "properties": {
        "id": {"type":"string"}, "owner_id": {"type":"string"}, "display_name": {"type":"string"}, "title": {"type":"string"},
        "content": {"type":"string"}, "is_trashed": {"type":"boolean"}, "trashed_at": {"type":"string","format":"date-time","nullable":true},
        "created_at": {"type":"string","format":"date-time"}, "updated_at": {"type":"string","format":"date-time"} } },
      "Edit": { "type": "object", "required": ["title","content","display_name"], "properties": { "title": {"type":"string"}, "content": {"type":"string"}, "display_name": {"type":"string"} } }
    }
  },
  "security": [ { "bearer": [] } ],
  "paths": {
    "/api/auth/register": {
      "post": { "summary": "Create an account", "security": [],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "201": { "description": "user created" }, "400": { "description": "missing field" }, "409": { "description": "email taken" } } }
    },
    "/api/auth/login": {
      "post": { "summary": "Exchange email and password for an access token", "security": [],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "accessToken and user" }, "401": { "description": "invalid credentials" } } }
    },
    "/api/auth/logout": { "post": { "summary": "Revoke the presented access token", "responses": { "200": { "description": "logged out" } } } },
    "/api/auth/me": { "get": { "summary": "Authenticated identity", "responses": { "200": { "description": "id, email, name" } } } },
    "/api/pages": {
      "get": { "summary": "List active pages, most recently edited first", "responses": { "200": { "description": "summaries", "content": {"application/json": {"schema": {"type":"array","items":{"$ref":"#/components/schemas/Summary"}}}} } } },
      "post": { "summary": "Create a page",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"}}}}}},
        "responses": { "201": { "description": "created", "content": {"application/json": {"schema": {"$ref":"#/components/schemas/Summary"}}} }, "400": { "description": "invalid name" } } }
    },
    "/api/pages/{id}": {
      "get": { "summary": "Get a page", "responses": { "200": { "description": "page", "content": {"application/json": {"schema": {"$ref":"#/components/schemas/Page"}}} }, "404": { "description": "not found" } } },
      "put": { "summary": "Overwrite title, content and display name",
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Edit"}}}},
        "responses": { "200": { "description": "updated" }, "400": { "description": "invalid edit" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Move a page to the trash", "responses": { "204": { "description": "trashed" }, "404": { "description": "not found" }, "409": { "description": "already in trash" } } }
    },
    "/api/trash": {
      "get": { "summary": "List trashed pages, most recently trashed first", "responses": { "200": { "description": "summaries", "content": {"application/json": {"schema": {"type":"array","items":{"$ref":"#/components/schemas/TrashedSummary"}}}} } } }
    },
    "/api/trash/{id}/restore": { "post": { "summary": "Restore a page", "responses": { "200": { "description": "restored" }, "404": { "description": "not found" } } } },
    "/api/trash/{id}/permanent": { "delete": { "summary": "Permanently delete a trashed page", "responses": { "204": { "description": "deleted" }, "404": { "description": "not found or not in trash" } } } },
    "/health": { "get": { "summary": "Liveness check", "security": [], "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "security": [], "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
