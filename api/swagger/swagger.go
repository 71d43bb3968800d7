package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Gharzo Admin API",
        "description": "Property rental administration with document distribution and review reconciliation",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Login, tokens, passwords"},
        {"name": "Sub-Admins", "description": "Delegated administrator accounts"},
        {"name": "Properties", "description": "Property portfolio"},
        {"name": "Rooms", "description": "Room and bed inventory"},
        {"name": "Tenants", "description": "Tenant lifecycle"},
        {"name": "Expenses", "description": "Property expense ledger"},
        {"name": "Announcements", "description": "Notice board"},
        {"name": "Complaints", "description": "Maintenance complaints"},
        {"name": "Documents", "description": "Document distribution and review"},
        {"name": "Dues", "description": "Rent dues, payments, receipts"},
        {"name": "Visits", "description": "Viewing appointments"},
        {"name": "Reviews", "description": "Property rating moderation"},
        {"name": "Public", "description": "Unauthenticated discovery surface"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue tokens",
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate the refresh token",
                "responses": {
                    "200": {"description": "New token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sub-admins": {
            "get": {
                "tags": ["Sub-Admins"],
                "summary": "List sub-admins of the landlord",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Sub-admin page", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Sub-Admins"],
                "summary": "Create a sub-admin with permission grants",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/properties": {
            "get": {
                "tags": ["Properties"],
                "summary": "List the landlord's properties",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Property page", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Properties"],
                "summary": "Register a property",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/public/listings": {
            "get": {
                "tags": ["Public"],
                "summary": "Browse listed properties",
                "responses": {
                    "200": {"description": "Listing page", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List documents with reconciled review state",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Documents", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Registry unavailable or malformed response"}
                }
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Distribute a document to tenants",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/{id}/review": {
            "post": {
                "tags": ["Documents"],
                "summary": "Accept or reject a document submission",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Reconciled document", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Review already final"},
                    "502": {"description": "Registry unavailable or malformed response"}
                }
            }
        },
        "/dues/{id}/payments": {
            "post": {
                "tags": ["Dues"],
                "summary": "Record a payment against a due",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Updated due", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Due already settled"}
                }
            }
        },
        "/dues/{id}/receipt": {
            "get": {
                "tags": ["Dues"],
                "summary": "Download the PDF receipt of a settled due",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF receipt"},
                    "409": {"description": "Due not settled"}
                }
            }
        }
    },
    "definitions": {
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
                "status": {"type": "integer"}
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
