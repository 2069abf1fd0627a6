// Package docs registers the OpenAPI document served under /swagger.
// Regenerate from the handler annotations with `swag init -g cmd/server/main.go`.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"], "summary": "Register with email and password",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/messageResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/messageResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"], "summary": "Credentials sign-in",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/messageResponse"}}
                }
            }
        },
        "/auth/session": {
            "get": {
                "tags": ["auth"], "summary": "Current session", "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/sessionView"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/messageResponse"}}
                }
            }
        },
        "/auth/password-reset": {
            "post": {
                "tags": ["account-security"], "summary": "Request a password reset email",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/emailRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/actionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/messageResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/actionResponse"}}
                }
            }
        },
        "/auth/verification/resend": {
            "post": {
                "tags": ["account-security"], "summary": "Resend the verification code",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/emailRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/actionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/messageResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/messageResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/actionResponse"}}
                }
            }
        }
    },
    "definitions": {
        "messageResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "emailRequest": {"type": "object", "properties": {"email": {"type": "string"}}},
        "actionResponse": {"type": "object", "properties": {
            "message": {"type": "string"}, "cooldownActive": {"type": "boolean"}, "remainingTime": {"type": "integer"}
        }},
        "registerRequest": {"type": "object", "properties": {
            "email": {"type": "string"}, "password": {"type": "string"}, "name": {"type": "string"},
            "role": {"type": "string", "enum": ["freelancer", "client"]}
        }},
        "loginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "authResponse": {"type": "object", "properties": {"token": {"type": "string"}, "user": {"$ref": "#/definitions/identity"}}},
        "identity": {"type": "object", "properties": {
            "id": {"type": "string"}, "email": {"type": "string"}, "name": {"type": "string"}, "image": {"type": "string"},
            "provider": {"type": "string", "enum": ["credentials", "google", "github"]},
            "role": {"type": "string", "enum": ["freelancer", "client", "admin"]},
            "banned": {"type": "boolean"}, "email_verified": {"type": "boolean"},
            "created_at": {"type": "string"}, "updated_at": {"type": "string"}
        }},
        "sessionView": {"type": "object", "properties": {
            "id": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string"}, "provider": {"type": "string"}
        }}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "gigmarket account-security API",
	Description:      "Identity reconciliation, sessions and abuse-gated account emails.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
