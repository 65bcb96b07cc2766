package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check",
                "description": "Check if server is running",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "Server is healthy"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness Check",
                "description": "Check that the post store is reachable",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "Store reachable"
                    },
                    "503": {
                        "description": "Store unavailable"
                    }
                }
            }
        },
        "/api/books": {
            "get": {
                "tags": ["Books"],
                "summary": "List books",
                "description": "Returns the fixed books catalogue",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "Books",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/entities.Book"
                            }
                        }
                    }
                }
            },
            "post": {
                "tags": ["Books"],
                "summary": "Echo a book",
                "description": "Returns the posted JSON document unchanged. Nothing is stored.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "book",
                        "description": "Any JSON document",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "The submitted document",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Malformed JSON",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "entities.Book": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer",
                    "example": 1
                },
                "title": {
                    "type": "string",
                    "example": "The Great Gatsby"
                },
                "author": {
                    "type": "string",
                    "example": "F. Scott Fitzgerald"
                }
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {
                    "type": "string"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Masterblog API",
	Description:      "JSON endpoints of the Masterblog server",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
