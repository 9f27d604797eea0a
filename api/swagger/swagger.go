package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Staff Planning API",
        "description": "Allocation checks, overallocation reports and timeline layout over a read-only staffing snapshot.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Allocations", "description": "Daily load and overallocation checks"},
        {"name": "Reports", "description": "Overallocation report and downloads"},
        {"name": "Timeline", "description": "Grid layout and interaction helpers"},
        {"name": "Observability", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/allocations/check": {
            "post": {
                "tags": ["Allocations"],
                "summary": "Check a candidate assignment for overallocation",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CheckOverallocationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid range or allocation", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Person not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/people/{id}/allocations": {
            "get": {
                "tags": ["Allocations"],
                "summary": "Daily allocation totals of one person",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "start", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/people/{id}/allocations/{day}": {
            "get": {
                "tags": ["Allocations"],
                "summary": "Per-assignment breakdown of one day",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "day", "in": "path", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/overallocation": {
            "get": {
                "tags": ["Reports"],
                "summary": "People over the tolerance in a range",
                "parameters": [
                    {"name": "profile", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"name": "status", "in": "query", "type": "array", "items": {"type": "string", "enum": ["active", "inactive"]}, "collectionFormat": "multi"},
                    {"name": "contract_type", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"name": "start", "in": "query", "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "type": "string", "format": "date"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Reports disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/overallocation/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download the overallocation report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "profile", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"name": "start", "in": "query", "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/overallocation/exports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue an overallocation export",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "profile", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"name": "start", "in": "query", "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ExportJob"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/overallocation/exports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Poll an export",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ExportJob"}},
                    "404": {"description": "Unknown or expired export", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/overallocation/downloads/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished export",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Export not ready", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timeline": {
            "get": {
                "tags": ["Timeline"],
                "summary": "Lay out stored assignments for a window",
                "parameters": [
                    {"name": "window_start", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "window_end", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "day_width", "in": "query", "type": "number"},
                    {"name": "scroll_left", "in": "query", "type": "number"},
                    {"name": "visible_width", "in": "query", "type": "number"},
                    {"name": "sidebar_width", "in": "query", "type": "number"},
                    {"name": "dragging_id", "in": "query", "type": "string"},
                    {"name": "overallocated_only", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timeline/layout": {
            "post": {
                "tags": ["Timeline"],
                "summary": "Lay out caller-supplied data",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LayoutRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Unknown person or project", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timeline/snap": {
            "post": {
                "tags": ["Timeline"],
                "summary": "Snap a drag or resize to whole days",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SnapRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timeline/selection": {
            "post": {
                "tags": ["Timeline"],
                "summary": "Convert a pointer drag into a day range",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timeline/expand": {
            "post": {
                "tags": ["Timeline"],
                "summary": "Grow the window by whole months",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExpandRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Assignment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "person_id": {"type": "string"},
                "project_id": {"type": "string"},
                "start_date": {"type": "string", "format": "date"},
                "end_date": {"type": "string", "format": "date"},
                "allocation": {"type": "number"},
                "is_billable": {"type": "boolean"}
            }
        },
        "Person": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "profile": {"type": "string"},
                "status": {"type": "string", "enum": ["active", "inactive"]},
                "contract_type": {"type": "string"}
            }
        },
        "Project": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "client_name": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "Viewport": {
            "type": "object",
            "properties": {
                "window_start": {"type": "string", "format": "date"},
                "window_end": {"type": "string", "format": "date"},
                "day_width_px": {"type": "number"},
                "scroll_left_px": {"type": "number"},
                "visible_width_px": {"type": "number"},
                "sidebar_width_px": {"type": "number"}
            }
        },
        "CheckOverallocationRequest": {
            "type": "object",
            "properties": {
                "person_id": {"type": "string"},
                "start_date": {"type": "string", "format": "date"},
                "end_date": {"type": "string", "format": "date"},
                "allocation": {"type": "number"},
                "allocation_percent": {"type": "number"},
                "exclude_assignment_id": {"type": "string"},
                "existing": {"type": "array", "items": {"$ref": "#/definitions/Assignment"}}
            },
            "required": ["person_id", "start_date", "end_date"]
        },
        "LayoutRequest": {
            "type": "object",
            "properties": {
                "people": {"type": "array", "items": {"$ref": "#/definitions/Person"}},
                "projects": {"type": "array", "items": {"$ref": "#/definitions/Project"}},
                "assignments": {"type": "array", "items": {"$ref": "#/definitions/Assignment"}},
                "viewport": {"$ref": "#/definitions/Viewport"},
                "dragging_id": {"type": "string"},
                "skip_unresolved": {"type": "boolean"}
            }
        },
        "SnapRequest": {
            "type": "object",
            "properties": {
                "assignment": {"$ref": "#/definitions/Assignment"},
                "mode": {"type": "string", "enum": ["move", "resize_start", "resize_end"]},
                "delta_px": {"type": "number"},
                "day_width_px": {"type": "number"},
                "existing": {"type": "array", "items": {"$ref": "#/definitions/Assignment"}}
            },
            "required": ["assignment", "mode", "day_width_px"]
        },
        "SelectionRequest": {
            "type": "object",
            "properties": {
                "viewport": {"$ref": "#/definitions/Viewport"},
                "down_px": {"type": "number"},
                "move_px": {"type": "number"}
            }
        },
        "ExpandRequest": {
            "type": "object",
            "properties": {
                "viewport": {"$ref": "#/definitions/Viewport"},
                "direction": {"type": "string", "enum": ["start", "end"]},
                "months": {"type": "integer"}
            },
            "required": ["viewport", "direction", "months"]
        },
        "ExportJob": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "status": {"type": "string", "enum": ["queued", "running", "finished", "failed"]},
                "format": {"type": "string"},
                "rows": {"type": "integer"},
                "error": {"type": "string"},
                "download_url": {"type": "string"},
                "expires_at": {"type": "string", "format": "date-time"},
                "created_at": {"type": "string", "format": "date-time"},
                "finished_at": {"type": "string", "format": "date-time"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
