package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>homelab-docs API</title>
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
  "info": { "title": "homelab-docs", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } }
  },
  "paths": {
    "/api/services": {
      "get": { "summary": "List services", "responses": { "200": { "description": "services in insertion order" } } },
      "post": { "summary": "Create service (admin)", "security": [{"bearer": []}], "responses": { "201": { "description": "created" }, "400": { "description": "invalid body" } } }
    },
    "/api/services/{id}": {
      "get": { "summary": "Get service", "responses": { "200": { "description": "service" }, "404": { "description": "Service not found" } } },
      "patch": { "summary": "Update service (admin)", "security": [{"bearer": []}], "responses": { "200": { "description": "updated" }, "404": { "description": "Service not found" } } },
      "delete": { "summary": "Delete service (admin)", "security": [{"bearer": []}], "responses": { "204": { "description": "deleted" }, "404": { "description": "Service not found" } } }
    },
    "/api/documents": {
      "get": { "summary": "List documents", "responses": { "200": { "description": "documents" } } },
      "post": { "summary": "Create document (admin)", "security": [{"bearer": []}], "responses": { "201": { "description": "created" }, "409": { "description": "slug already exists" } } }
    },
    "/api/documents/category/{category}": {
      "get": { "summary": "Documents in a category (case-insensitive)", "responses": { "200": { "description": "documents" } } }
    },
    "/api/documents/slug/{slug}": {
      "get": { "summary": "Document by slug", "responses": { "200": { "description": "document" }, "404": { "description": "Document not found" } } }
    },
    "/api/documents/{id}": {
      "get": { "summary": "Get document", "responses": { "200": { "description": "document" }, "404": { "description": "Document not found" } } },
      "patch": { "summary": "Update document (admin)", "security": [{"bearer": []}], "responses": { "200": { "description": "updated" }, "409": { "description": "slug already exists" } } },
      "delete": { "summary": "Delete document (admin)", "security": [{"bearer": []}], "responses": { "204": { "description": "deleted" } } }
    },
    "/api/documents/{id}/html": {
      "get": { "summary": "Document content rendered to HTML", "responses": { "200": { "description": "text/html" } } }
    },
    "/api/tutorials": {
      "get": { "summary": "List tutorials", "responses": { "200": { "description": "tutorials" } } },
      "post": { "summary": "Create tutorial (admin)", "security": [{"bearer": []}], "responses": { "201": { "description": "created" }, "409": { "description": "slug already exists" } } }
    },
    "/api/tutorials/featured": {
      "get": { "summary": "Featured tutorials", "responses": { "200": { "description": "tutorials with featured=1" } } }
    },
    "/api/tutorials/slug/{slug}": {
      "get": { "summary": "Tutorial by slug", "responses": { "200": { "description": "tutorial" }, "404": { "description": "Tutorial not found" } } }
    },
    "/api/tutorials/{id}": {
      "get": { "summary": "Get tutorial", "responses": { "200": { "description": "tutorial" }, "404": { "description": "Tutorial not found" } } },
      "patch": { "summary": "Update tutorial (admin)", "security": [{"bearer": []}], "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Delete tutorial (admin)", "security": [{"bearer": []}], "responses": { "204": { "description": "deleted" } } }
    },
    "/api/tutorials/{id}/html": {
      "get": { "summary": "Tutorial content rendered to HTML", "responses": { "200": { "description": "text/html" } } }
    },
    "/api/search": {
      "get": {
        "summary": "Substring search over services, documents and tutorials",
        "parameters": [{ "name": "q", "in": "query", "required": true, "schema": { "type": "string" } }],
        "responses": { "200": { "description": "grouped results" }, "400": { "description": "Search query is required" } }
      }
    },
    "/api/auth/login": {
      "post": {
        "summary": "Password login",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"username":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "tokens returned" }, "401": { "description": "invalid credentials" } }
      }
    },
    "/api/auth/refresh": {
      "post": { "summary": "Rotate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new token pair" }, "401": { "description": "invalid refresh" } } }
    },
    "/api/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } }
    },
    "/api/auth/me": {
      "get": { "summary": "Current user", "security": [{"bearer": []}], "responses": { "200": { "description": "user" }, "401": { "description": "unauthenticated" } } }
    },
    "/api/admin/snapshots": {
      "post": { "summary": "Export the catalog to object storage (admin)", "security": [{"bearer": []}], "responses": { "201": { "description": "snapshot key and download URL" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition" } } } }
  }
}`
