// Package docs содержит описание HTTP API для swagger.
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Описание API",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.IndexRes"}}}
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Проверка работоспособности",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.HealthRes"}}}
            }
        },
        "/uploads/{filename}": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["system"],
                "summary": "Файл изображения товара",
                "parameters": [{"type": "string", "description": "Имя файла", "name": "filename", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/subcategories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Все допустимые подкатегории",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Список товаров",
                "parameters": [
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "string", "name": "subCategory", "in": "query"},
                    {"type": "string", "name": "sourceWebsite", "in": "query"},
                    {"type": "string", "name": "deals", "in": "query"},
                    {"type": "number", "name": "minPrice", "in": "query"},
                    {"type": "number", "name": "maxPrice", "in": "query"},
                    {"type": "string", "name": "sortBy", "in": "query"},
                    {"type": "string", "name": "sortOrder", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/usecase.ListEnvelope"}}}
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Создание товара",
                "parameters": [
                    {"type": "string", "name": "title", "in": "formData", "required": true},
                    {"type": "string", "name": "description", "in": "formData", "required": true},
                    {"type": "string", "name": "affiliateLink", "in": "formData", "required": true},
                    {"type": "string", "name": "SEO_title", "in": "formData", "required": true},
                    {"type": "string", "name": "META_description", "in": "formData", "required": true},
                    {"type": "string", "name": "sourceWebsite", "in": "formData", "required": true},
                    {"type": "string", "name": "category", "in": "formData"},
                    {"type": "string", "name": "subCategory", "in": "formData", "required": true},
                    {"type": "boolean", "name": "deals", "in": "formData"},
                    {"type": "number", "name": "price", "in": "formData"},
                    {"type": "file", "name": "image", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Количество товаров по категориям, подкатегориям и магазинам",
                "responses": {"200": {"description": "OK"}, "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}}
            }
        },
        "/products/deals": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Товары со скидкой",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/usecase.ListEnvelope"}}}
            }
        },
        "/products/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Поиск по ключевому слову",
                "parameters": [{"type": "string", "name": "q", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/usecase.ListEnvelope"}}}
            }
        },
        "/products/search/suggestions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Подсказки названий",
                "parameters": [{"type": "string", "name": "q", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/products/subcategories/{category}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Подкатегории внутри категории",
                "parameters": [{"type": "string", "name": "category", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Товар по идентификатору",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}}
            },
            "patch": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Частичное обновление товара",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "file", "name": "image", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Удаление товара",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/admin/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Весь каталог без фильтров",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/usecase.ListEnvelope"}}}
            }
        },
        "/admin/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Товар по идентификатору без обёртки",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "imageUrl": {"type": "string"},
                "affiliateLink": {"type": "string"},
                "SEO_title": {"type": "string"},
                "META_description": {"type": "string"},
                "sourceWebsite": {"type": "string"},
                "category": {"type": "string"},
                "subCategory": {"type": "string"},
                "deals": {"type": "boolean"},
                "price": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "usecase.Pagination": {
            "type": "object",
            "properties": {
                "currentPage": {"type": "integer"},
                "totalPages": {"type": "integer"},
                "totalItems": {"type": "integer"},
                "itemsPerPage": {"type": "integer"},
                "hasNextPage": {"type": "boolean"},
                "hasPrevPage": {"type": "boolean"}
            }
        },
        "usecase.ListEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/domain.Product"}},
                "pagination": {"$ref": "#/definitions/usecase.Pagination"},
                "filters": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "details": {"type": "array", "items": {"type": "string"}}
            }
        },
        "http.IndexRes": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "version": {"type": "string"},
                "endpoints": {"type": "object", "additionalProperties": {"type": "string"}},
                "documentation": {"type": "string"}
            }
        },
        "http.HealthRes": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "environment": {"type": "string"},
                "version": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "PukkaPrice Backend API",
	Description:      "Каталог партнёрских товаров: листинг, поиск, категории и администрирование.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
