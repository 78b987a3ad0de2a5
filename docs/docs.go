// Package docs holds the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/lessons/{lessonID}/attempts": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the latest incomplete attempt of the caller, or creates the next one once it is complete",
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Start or resume an attempt",
                "parameters": [
                    {"type": "integer", "description": "Lesson ID", "name": "lessonID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Attempt", "schema": {"$ref": "#/definitions/models.AttemptResponse"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Lesson has no prompts", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Duplicate request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/lessons/{lessonID}/reference": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Get or create the caller's reference record",
                "parameters": [
                    {"type": "integer", "description": "Lesson ID", "name": "lessonID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Reference record", "schema": {"$ref": "#/definitions/models.AttemptResponse"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Duplicate request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/records/{token}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Get record progress",
                "parameters": [
                    {"type": "string", "description": "Record token", "name": "token", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Record progress", "schema": {"$ref": "#/definitions/models.AttemptResponse"}},
                    "401": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Record not found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/submissions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a pending audio record and returns the file key the upload must be tagged with",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Register an audio submission",
                "parameters": [
                    {"description": "Submission", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateSubmissionRequest"}}
                ],
                "responses": {
                    "201": {"description": "File key", "schema": {"$ref": "#/definitions/models.SubmissionResponse"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "401": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "403": {"description": "Record belongs to another user", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Prompt not found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/review/lessons/{lessonID}/records": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["review"],
                "summary": "List complete attempts of a lesson",
                "parameters": [
                    {"type": "integer", "description": "Lesson ID", "name": "lessonID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Complete attempts", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.ReviewRecordItem"}}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/review/records/{token}/next": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the next validated audio of the record the caller has not reviewed, with word timings",
                "produces": ["application/json"],
                "tags": ["review"],
                "summary": "Next audio to review",
                "parameters": [
                    {"type": "string", "description": "Record token", "name": "token", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Audio to review", "schema": {"$ref": "#/definitions/models.ReviewItem"}},
                    "401": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "All reviews completed", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "422": {"description": "Prompt and alignment do not match", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/review/audio/{fileKey}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["review"],
                "summary": "Mark an audio record as reviewed",
                "parameters": [
                    {"type": "string", "description": "File key", "name": "fileKey", "in": "path", "required": true},
                    {"description": "Review", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/models.CreateReviewRequest"}}
                ],
                "responses": {
                    "204": {"description": "Reviewed"},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Audio record not found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/review/references/{token}/prompts/{promptID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["review"],
                "summary": "Authoritative reference audio of a prompt",
                "parameters": [
                    {"type": "string", "description": "Reference record token", "name": "token", "in": "path", "required": true},
                    {"type": "integer", "description": "Prompt ID", "name": "promptID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Reference audio", "schema": {"$ref": "#/definitions/models.AudioRecord"}},
                    "401": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "No reference audio", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "models.AttemptResponse": {
            "type": "object",
            "properties": {
                "recordToken": {"type": "string"},
                "kind": {"type": "string"},
                "sequenceId": {"type": "integer"},
                "promptsCompleted": {"type": "integer"},
                "promptCount": {"type": "integer"},
                "complete": {"type": "boolean"}
            }
        },
        "models.CreateSubmissionRequest": {
            "type": "object",
            "properties": {
                "recordToken": {"type": "string"},
                "promptId": {"type": "integer"}
            }
        },
        "models.SubmissionResponse": {
            "type": "object",
            "properties": {"fileKey": {"type": "string"}}
        },
        "models.CreateReviewRequest": {
            "type": "object",
            "properties": {"comment": {"type": "string"}}
        },
        "models.AudioRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "userId": {"type": "integer"},
                "promptId": {"type": "integer"},
                "fileKey": {"type": "string"},
                "passedValidation": {"type": "boolean"},
                "createdAt": {"type": "string"},
                "modifiedAt": {"type": "string"}
            }
        },
        "models.Prompt": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "lessonId": {"type": "integer"},
                "position": {"type": "integer"},
                "text": {"type": "string"},
                "graphId": {"type": "string"}
            }
        },
        "models.MillisAlignment": {
            "type": "object",
            "properties": {
                "word": {"type": "string"},
                "start": {"type": "integer"},
                "length": {"type": "integer"}
            }
        },
        "models.WordTiming": {
            "type": "object",
            "properties": {
                "word": {"type": "string"},
                "alignment": {"$ref": "#/definitions/models.MillisAlignment"}
            }
        },
        "models.ReviewItem": {
            "type": "object",
            "properties": {
                "audioRecord": {"$ref": "#/definitions/models.AudioRecord"},
                "prompt": {"$ref": "#/definitions/models.Prompt"},
                "filesPresent": {"type": "boolean"},
                "wordTimings": {"type": "array", "items": {"$ref": "#/definitions/models.WordTiming"}}
            }
        },
        "models.ReviewRecordItem": {
            "type": "object",
            "properties": {
                "recordToken": {"type": "string"},
                "userId": {"type": "integer"},
                "sequenceId": {"type": "integer"},
                "modifiedAt": {"type": "string"},
                "reviewed": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Pronunciation Practice API",
	Description:      "API for lesson attempts, audio submissions, validation verdicts and teacher review",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
