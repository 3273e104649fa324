package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Church Events API",
        "description": "Bible quiz group registration, event sign-up and the admin back office.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Bible Quiz", "description": "Public group registration form"},
        {"name": "Verification", "description": "Email verification codes"},
        {"name": "Events", "description": "Public event listings and sign-up"},
        {"name": "Documents", "description": "Signed registration form downloads"},
        {"name": "Authentication", "description": "Administrator sessions"},
        {"name": "Admin Bible Quiz", "description": "Registration back office"},
        {"name": "Admin Events", "description": "Event management"}
    ],
    "paths": {
        "/bible-quiz/registrations": {
            "post": {
                "tags": ["Bible Quiz"],
                "summary": "Register a bible quiz group",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/QuizRegistrationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Registered", "schema": {"$ref": "#/definitions/QuizRegistrationResponse"}},
                    "400": {"description": "Validation failure or duplicate", "schema": {"$ref": "#/definitions/FailureBody"}},
                    "403": {"description": "Email not verified", "schema": {"$ref": "#/definitions/FailureBody"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/FailureBody"}}
                }
            }
        },
        "/otp/send": {
            "post": {
                "tags": ["Verification"],
                "summary": "Send an email verification code",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SendOTPRequest"}}
                ],
                "responses": {
                    "200": {"description": "Code sent", "schema": {"$ref": "#/definitions/SendOTPResponse"}},
                    "400": {"description": "Invalid email", "schema": {"$ref": "#/definitions/FailureBody"}},
                    "429": {"description": "Resend throttled", "schema": {"$ref": "#/definitions/FailureBody"}}
                }
            }
        },
        "/otp/verify": {
            "post": {
                "tags": ["Verification"],
                "summary": "Verify an email verification code",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifyOTPRequest"}}
                ],
                "responses": {
                    "200": {"description": "Verified", "schema": {"$ref": "#/definitions/VerifyOTPResponse"}},
                    "400": {"description": "Wrong, expired or exhausted code", "schema": {"$ref": "#/definitions/VerifyOTPResponse"}}
                }
            }
        },
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List upcoming events",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/events/{id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Get a published event",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/{id}/registrations": {
            "post": {
                "tags": ["Events"],
                "summary": "Sign up for an event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventRegistrationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Registered", "schema": {"$ref": "#/definitions/EventRegistrationResponse"}},
                    "400": {"description": "Invalid, closed, full or duplicate", "schema": {"$ref": "#/definitions/FailureBody"}},
                    "404": {"description": "Event not found", "schema": {"$ref": "#/definitions/FailureBody"}}
                }
            }
        },
        "/documents/{token}": {
            "get": {
                "tags": ["Documents"],
                "summary": "Download a stored registration form",
                "produces": ["application/pdf"],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "PDF"},
                    "403": {"description": "Link expired"},
                    "404": {"description": "Unknown link"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate an administrator",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "Tokens issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate a refresh token",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}],
                "responses": {"200": {"description": "Tokens issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke a refresh token",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}],
                "responses": {"204": {"description": "Revoked"}}
            }
        },
        "/admin/bible-quiz/registrations": {
            "get": {
                "tags": ["Admin Bible Quiz"],
                "summary": "List quiz registrations",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "zone", "in": "query", "type": "string"},
                    {"name": "language", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/bible-quiz/registrations/{id}": {
            "get": {
                "tags": ["Admin Bible Quiz"],
                "summary": "Get a registration with participants",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Admin Bible Quiz"],
                "summary": "Delete a registration",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/admin/bible-quiz/registrations/{id}/document": {
            "get": {
                "tags": ["Admin Bible Quiz"],
                "summary": "Render the registration form again",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "PDF"}}
            }
        },
        "/admin/bible-quiz/summary": {
            "get": {
                "tags": ["Admin Bible Quiz"],
                "summary": "Registration totals per zone",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/bible-quiz/export": {
            "get": {
                "tags": ["Admin Bible Quiz"],
                "summary": "Export registrations",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "zone", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/admin/events": {
            "get": {
                "tags": ["Admin Events"],
                "summary": "List all events including drafts",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Admin Events"],
                "summary": "Create an event",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slug taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/events/{id}": {
            "get": {
                "tags": ["Admin Events"],
                "summary": "Get any event",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Admin Events"],
                "summary": "Replace an event",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Admin Events"],
                "summary": "Delete an event and its registrations",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/admin/events/{id}/registrations": {
            "get": {
                "tags": ["Admin Events"],
                "summary": "List sign-ups for an event",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "Participant": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "gender": {"type": "string"},
                "dob": {"type": "string"},
                "mobileNo": {"type": "string"}
            }
        },
        "QuizRegistrationRequest": {
            "type": "object",
            "required": ["leaderName", "church", "churchPlace", "language", "zone", "contactNumber", "email"],
            "properties": {
                "leaderName": {"type": "string"},
                "church": {"type": "string"},
                "churchPlace": {"type": "string"},
                "language": {"type": "string"},
                "zone": {"type": "string"},
                "contactNumber": {"type": "string"},
                "alternateNumber": {"type": "string"},
                "email": {"type": "string"},
                "verificationEmail": {"type": "string"},
                "verificationToken": {"type": "string"},
                "participants": {"type": "array", "items": {"$ref": "#/definitions/Participant"}}
            }
        },
        "QuizRegistrationResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "registrationId": {"type": "string"},
                "groupNumber": {"type": "string"},
                "pdfDownload": {"type": "string", "description": "data:application/pdf;base64 URI"},
                "documentUrl": {"type": "string"}
            }
        },
        "SendOTPRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}}
        },
        "SendOTPResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "token": {"type": "string"},
                "expiresAt": {"type": "string", "format": "date-time"},
                "otp": {"type": "string"}
            }
        },
        "VerifyOTPRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "otp": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "VerifyOTPResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "verificationToken": {"type": "string"},
                "expiresAt": {"type": "string", "format": "date-time"},
                "attemptsRemaining": {"type": "integer"}
            }
        },
        "EventRequest": {
            "type": "object",
            "required": ["title", "startsAt"],
            "properties": {
                "title": {"type": "string"},
                "slug": {"type": "string"},
                "description": {"type": "string"},
                "venue": {"type": "string"},
                "startsAt": {"type": "string", "format": "date-time"},
                "registrationDeadline": {"type": "string", "format": "date-time"},
                "capacity": {"type": "integer"},
                "published": {"type": "boolean"}
            }
        },
        "EventRegistrationRequest": {
            "type": "object",
            "required": ["fullName", "email"],
            "properties": {
                "fullName": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "church": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "EventRegistrationResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "registrationId": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {"refresh_token": {"type": "string"}}
        },
        "FailureBody": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "code": {"type": "string"}
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
