package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Banco de Questões Web",
        "description": "Filter, search and browse exam questions from the question bank backend",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Filters", "description": "Filter controller state for the current browser session"},
        {"name": "Search", "description": "Search orchestrator and question detail view"}
    ],
    "paths": {
        "/referencias": {
            "get": {
                "tags": ["Filters"],
                "summary": "Reference data for the filter form",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/filtros": {
            "get": {
                "tags": ["Filters"],
                "summary": "Current filter selection",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Filters"],
                "summary": "Clear every filter",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/filtros/campo": {
            "put": {
                "tags": ["Filters"],
                "summary": "Assign a scalar filter field",
                "description": "Assigning the selected difficulty again clears it.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetFieldRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/filtros/campo/{field}": {
            "delete": {
                "tags": ["Filters"],
                "summary": "Clear a scalar filter field",
                "parameters": [
                    {"name": "field", "in": "path", "required": true, "type": "string", "enum": ["materia_id", "vestibular_id", "ano", "dificuldade"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown field", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/filtros/assuntos/{id}/toggle": {
            "post": {
                "tags": ["Filters"],
                "summary": "Toggle a topic in the selection",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/buscas": {
            "post": {
                "tags": ["Search"],
                "summary": "Search questions with the current filters",
                "description": "Runs synchronously unless async=true; completion of async searches is pushed on /ws.",
                "parameters": [
                    {"name": "async", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/buscas/atual": {
            "get": {
                "tags": ["Search"],
                "summary": "Current search state and result grid",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/questoes/{id}/resolucao": {
            "get": {
                "tags": ["Search"],
                "summary": "Detail view of a question from the current results",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not in current results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SetFieldRequest": {
            "type": "object",
            "required": ["field", "value"],
            "properties": {
                "field": {"type": "string", "enum": ["materia_id", "vestibular_id", "ano", "dificuldade"]},
                "value": {"type": "integer", "minimum": 0}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
