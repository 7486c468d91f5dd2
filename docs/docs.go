// Package docs registers the OpenAPI document served under /swagger/.
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
    "paths": {
        "/documents": {
            "get": {
                "description": "Get the persisted dataset rows with their flags, without payloads",
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "List documents",
                "responses": {
                    "200": {
                        "description": "Persisted rows",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/model.PersistedDocument"}}
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {"type": "object", "additionalProperties": true}
                    }
                }
            }
        },
        "/runs": {
            "get": {
                "description": "Get every recorded run, newest first",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "List runs",
                "responses": {
                    "200": {
                        "description": "List of runs",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/model.RunRecord"}}
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {"type": "object", "additionalProperties": true}
                    }
                }
            },
            "post": {
                "description": "Fetch the dataset, persist it and reconcile the three aggregate sums. Runs are serialized.",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Run the pipeline",
                "responses": {
                    "200": {"description": "Run completed", "schema": {"$ref": "#/definitions/model.RunReport"}},
                    "500": {"description": "Persistence or query failure", "schema": {"$ref": "#/definitions/model.RunReport"}},
                    "502": {"description": "Source unreachable or malformed", "schema": {"$ref": "#/definitions/model.RunReport"}}
                }
            }
        },
        "/runs/{id}": {
            "get": {
                "description": "Retrieve the recorded state and sums of a run",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run",
                "parameters": [
                    {"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Run details", "schema": {"$ref": "#/definitions/model.RunRecord"}},
                    "400": {"description": "Invalid run ID", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Run not found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/sums": {
            "get": {
                "description": "Compute the inline query and view sums over the active rows",
                "produces": ["application/json"],
                "tags": ["sums"],
                "summary": "Current sums",
                "responses": {
                    "200": {"description": "Current sums", "schema": {"$ref": "#/definitions/model.SumsView"}},
                    "500": {"description": "Query failure", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        }
    },
    "definitions": {
        "model.AggregateResult": {
            "type": "object",
            "properties": {
                "method": {"type": "string", "enum": ["in_memory", "inline_query", "view"]},
                "sum": {"type": "integer"}
            }
        },
        "model.PersistedDocument": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "api_name": {"type": "string"},
                "doc_id": {"type": "string"},
                "doc_name": {"type": "string"},
                "is_active": {"type": "boolean"},
                "is_deleted": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "model.RunRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "state": {"type": "string"},
                "in_memory_sum": {"type": "integer"},
                "inline_query_sum": {"type": "integer"},
                "view_sum": {"type": "integer"},
                "error": {"type": "string"},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"}
            }
        },
        "model.RunReport": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "state": {"type": "string", "enum": ["idle", "fetched", "persisted", "reconciled", "done", "failed"]},
                "results": {"type": "array", "items": {"$ref": "#/definitions/model.AggregateResult"}},
                "error": {"type": "string"},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"}
            }
        },
        "model.SumsView": {
            "type": "object",
            "properties": {
                "inline_query": {"type": "integer"},
                "view": {"type": "integer"},
                "consistent": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Population Pipeline API",
	Description:      "Fetches the population dataset, persists it and reconciles three aggregations of the 2018-2020 total.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
