// Package docs holds the swagger document served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"license": {
			"name": "Apache 2.0",
			"url": "http://www.apache.org/licenses/LICENSE-2.0.html"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/health": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"SYSTEM"
				],
				"summary": "Health check",
				"parameters": [],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					},
					"503": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				}
			}
		},
		"/v1/api/sessions": {
			"delete": {
				"description": "Drops sessions unused for the given duration; stored blacklists and results are kept",
				"produces": [
					"application/json"
				],
				"tags": [
					"SYSTEM"
				],
				"summary": "Evict idle sessions",
				"parameters": [
					{
						"type": "string",
						"description": "Idle duration, e.g. 30m",
						"name": "idle",
						"in": "query",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				}
			}
		},
		"/v1/api/perks": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"PERK"
				],
				"summary": "List perks",
				"parameters": [],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				}
			}
		},
		"/v1/api/perks/{perk_id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"PERK"
				],
				"summary": "Describe perk",
				"parameters": [
					{
						"type": "string",
						"description": "perk_id",
						"name": "perk_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				}
			}
		},
		"/v1/api/usage": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"STATS"
				],
				"summary": "Perk usage statistics",
				"parameters": [
					{
						"type": "string",
						"description": "user_id",
						"name": "user_id",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "outcome",
						"name": "outcome",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "period",
						"name": "period",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "order",
						"name": "order",
						"in": "query",
						"required": false
					},
					{
						"type": "integer",
						"description": "limit",
						"name": "limit",
						"in": "query",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				}
			}
		},
		"/v1/api/roulette/{user_id}": {
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"ROULETTE"
				],
				"summary": "End a session",
				"parameters": [
					{
						"type": "string",
						"description": "user_id",
						"name": "user_id",
						"in": "path",
						"required": true
					},
					{
						"type": "boolean",
						"description": "force",
						"name": "force",
						"in": "query",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				}
			}
		},
		"/v1/api/roulette/{user_id}/roll": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"ROULETTE"
				],
				"summary": "Roll a build",
				"parameters": [
					{
						"type": "string",
						"description": "user_id",
						"name": "user_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					},
					"422": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				}
			}
		},
		"/v1/api/roulette/{user_id}/build": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"ROULETTE"
				],
				"summary": "Current build",
				"parameters": [
					{
						"type": "string",
						"description": "user_id",
						"name": "user_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				}
			},
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"ROULETTE"
				],
				"summary": "Install a custom build",
				"parameters": [
					{
						"type": "string",
						"description": "user_id",
						"name": "user_id",
						"in": "path",
						"required": true
					},
					{
						"description": "CustomBuildRequest",
						"name": "CustomBuildRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/http.CustomBuildRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/v1/api/roulette/{user_id}/replace/{index}": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"ROULETTE"
				],
				"summary": "Re-draw one slot",
				"parameters": [
					{
						"type": "string",
						"description": "user_id",
						"name": "user_id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "index",
						"name": "index",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				}
			}
		},
		"/v1/api/roulette/{user_id}/ban/{index}": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"ROULETTE"
				],
				"summary": "Blacklist a slot and re-draw it",
				"parameters": [
					{
						"type": "string",
						"description": "user_id",
						"name": "user_id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "index",
						"name": "index",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				}
			}
		},
		"/v1/api/roulette/{user_id}/blacklist": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"BLACKLIST"
				],
				"summary": "Blacklisted titles",
				"parameters": [
					{
						"type": "string",
						"description": "user_id",
						"name": "user_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				}
			},
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"BLACKLIST"
				],
				"summary": "Blacklist a perk",
				"parameters": [
					{
						"type": "string",
						"description": "user_id",
						"name": "user_id",
						"in": "path",
						"required": true
					},
					{
						"description": "BlacklistRequest",
						"name": "BlacklistRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/http.BlacklistRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/v1/api/roulette/{user_id}/blacklist/{perk_id}": {
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"BLACKLIST"
				],
				"summary": "Allow a perk again",
				"parameters": [
					{
						"type": "string",
						"description": "user_id",
						"name": "user_id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "perk_id",
						"name": "perk_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				}
			}
		},
		"/v1/api/roulette/{user_id}/whitelist": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"BLACKLIST"
				],
				"summary": "Titles eligible for draws",
				"parameters": [
					{
						"type": "string",
						"description": "user_id",
						"name": "user_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				}
			}
		},
		"/v1/api/roulette/{user_id}/result": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"ROULETTE"
				],
				"summary": "Register a match result",
				"parameters": [
					{
						"type": "string",
						"description": "user_id",
						"name": "user_id",
						"in": "path",
						"required": true
					},
					{
						"description": "ResultRequest",
						"name": "ResultRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/http.ResultRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/v1/api/roulette/{user_id}/message": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"ROULETTE"
				],
				"summary": "Last rendered build message",
				"parameters": [
					{
						"type": "string",
						"description": "user_id",
						"name": "user_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				}
			},
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"ROULETTE"
				],
				"summary": "Remember the last rendered build message",
				"parameters": [
					{
						"type": "string",
						"description": "user_id",
						"name": "user_id",
						"in": "path",
						"required": true
					},
					{
						"description": "MessageRefRequest",
						"name": "MessageRefRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/http.MessageRefRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ResponseBody"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/webhook/line": {
			"post": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"LINE"
				],
				"summary": "LINE Webhook",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"additionalProperties": true
						}
					}
				}
			}
		}
	},
	"definitions": {
		"http.Status": {
			"type": "object",
			"properties": {
				"code": {
					"type": "integer"
				},
				"message": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"http.ResponseBody": {
			"type": "object",
			"properties": {
				"status": {
					"$ref": "#/definitions/http.Status"
				},
				"data": {}
			}
		},
		"http.CustomBuildRequest": {
			"type": "object",
			"properties": {
				"perk_ids": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"titles": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"http.ResultRequest": {
			"type": "object",
			"required": [
				"won"
			],
			"properties": {
				"won": {
					"type": "boolean"
				},
				"build_id": {
					"type": "string",
					"maxLength": 32
				},
				"perk_ids": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"http.BlacklistRequest": {
			"type": "object",
			"required": [
				"perk_id"
			],
			"properties": {
				"perk_id": {
					"type": "string",
					"maxLength": 64
				}
			}
		},
		"http.MessageRefRequest": {
			"type": "object",
			"required": [
				"ref"
			],
			"properties": {
				"ref": {
					"type": "string",
					"maxLength": 256
				}
			}
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Perk Roulette API",
	Description:      "Random survivor builds with per-user blacklists and match statistics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
