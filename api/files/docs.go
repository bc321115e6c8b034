// Package files registers the OpenAPI description of the file access
// service with swag. Regenerate with:
//
//	swag init -g internal/files/http/router.go -o api/files --packageName files
package files

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/fileaccess"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/livez": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/filesdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version, checks", "schema": {"$ref": "#/definitions/filesdk.HealthResponse"}},
                    "503": {"description": "service not ready", "schema": {"$ref": "#/definitions/filesdk.HealthResponse"}}
                }
            }
        },
        "/v1/users": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Create a user",
                "parameters": [
                    {"type": "string", "description": "Bootstrap token", "name": "X-Bootstrap-Token", "in": "header", "required": true},
                    {"description": "User", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/filesdk.CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/filesdk.UserResponse"}},
                    "400": {"description": "Invalid request body or validation failed", "schema": {"$ref": "#/definitions/filesdk.ValidationErrorResponse"}},
                    "401": {"description": "Missing bootstrap token", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}},
                    "403": {"description": "Wrong bootstrap token", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}},
                    "409": {"description": "Username taken", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}}
                }
            }
        },
        "/v1/sessions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/filesdk.LoginRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/filesdk.SessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/filesdk.ValidationErrorResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}}
                }
            }
        },
        "/v1/records": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Records"],
                "summary": "Create a record",
                "parameters": [
                    {"description": "Record", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/filesdk.CreateRecordRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/filesdk.RecordResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/filesdk.ValidationErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}}
                }
            }
        },
        "/v1/records/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Records"],
                "summary": "Get a record",
                "parameters": [
                    {"type": "string", "description": "Record ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/filesdk.RecordResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Records"],
                "summary": "Change open access",
                "parameters": [
                    {"type": "string", "description": "Record ID", "name": "id", "in": "path", "required": true},
                    {"description": "Open access flag", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/filesdk.SetOpenAccessRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}}
                }
            }
        },
        "/v1/records/{id}/tempfileaccess": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns a token that lets anyone read every file of the record's bucket until it expires.\nPass it to GET /v1/files/{bucket_id}/{key} as the jwt query parameter.",
                "produces": ["application/json"],
                "tags": ["Records"],
                "summary": "Issue a temporary access token",
                "parameters": [
                    {"type": "string", "description": "Record ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 30, "description": "Lifetime in days", "name": "days", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Additional minutes", "name": "minutes", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/filesdk.TempAccessResponse"}},
                    "400": {"description": "Invalid lifetime", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}},
                    "401": {"description": "Not logged in", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}},
                    "403": {"description": "Caller cannot edit the record", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}},
                    "404": {"description": "Unknown record", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}}
                }
            }
        },
        "/v1/files/{bucket_id}/{key}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Serves one version of a file. A jwt issued for this bucket authorizes the download without a session;\notherwise the caller needs read permission on the record. With all=true every file of the bucket is\nreturned as an uncompressed ZIP named files.zip.",
                "produces": ["application/force-download", "application/zip"],
                "tags": ["Files"],
                "summary": "Download a file",
                "parameters": [
                    {"type": "string", "description": "Bucket ID", "name": "bucket_id", "in": "path", "required": true},
                    {"type": "string", "description": "Object key", "name": "key", "in": "path", "required": true},
                    {"type": "string", "description": "Object version, defaults to the latest", "name": "versionId", "in": "query"},
                    {"type": "string", "description": "Temporary access token", "name": "jwt", "in": "query"},
                    {"type": "boolean", "description": "Download every file of the bucket", "name": "all", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}},
                    "403": {"description": "Logged in without read permission", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}},
                    "404": {"description": "Unknown bucket or file, or no access", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}},
                    "501": {"description": "Multipart uploads", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/octet-stream"],
                "produces": ["application/json"],
                "tags": ["Files"],
                "summary": "Upload a file",
                "parameters": [
                    {"type": "string", "description": "Bucket ID", "name": "bucket_id", "in": "path", "required": true},
                    {"type": "string", "description": "Object key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/filesdk.ObjectResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/filesdk.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "filesdk.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "error_description": {"type": "string"}
            }
        },
        "filesdk.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "filesdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {"type": "string"},
                "blob_store": {"type": "string"}
            }
        },
        "filesdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"$ref": "#/definitions/filesdk.HealthChecks"}
            }
        },
        "filesdk.CreateUserRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "filesdk.UserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "filesdk.LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "filesdk.SessionResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_at": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "filesdk.CreateRecordRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "open_access": {"type": "boolean"}
            }
        },
        "filesdk.SetOpenAccessRequest": {
            "type": "object",
            "properties": {
                "open_access": {"type": "boolean"}
            }
        },
        "filesdk.RecordResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "owner_id": {"type": "string"},
                "title": {"type": "string"},
                "open_access": {"type": "boolean"},
                "bucket_id": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "filesdk.ObjectResponse": {
            "type": "object",
            "properties": {
                "version_id": {"type": "string"},
                "bucket_id": {"type": "string"},
                "key": {"type": "string"},
                "size": {"type": "integer"},
                "checksum": {"type": "string"},
                "mimetype": {"type": "string"},
                "is_head": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "filesdk.TempAccessResponse": {
            "type": "object",
            "properties": {
                "jwt": {"type": "string"},
                "expiration": {"type": "string", "example": "Tue, 31 Mar 2026 12:00:00 GMT"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Session token from POST /v1/sessions. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Temporary File Access API",
	Description:      "Stores the files of published records and hands out temporary, bucket scoped download tokens.\n\nTemporary access tokens are HS256 JWTs passed as the jwt query parameter.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
