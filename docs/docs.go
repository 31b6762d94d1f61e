// Package docs registers the OpenAPI document served by /v1/swagger.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler annotations.
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
        "/health": {"get": {"tags": ["health"], "summary": "Service and dependency health", "responses": {"200": {"description": "OK"}, "503": {"description": "Degraded"}}}},
        "/contact-info": {"get": {"tags": ["contact"], "summary": "Agency contact details", "responses": {"200": {"description": "OK"}}}},
        "/candidates": {"post": {"tags": ["candidates"], "summary": "Register as a candidate", "consumes": ["application/json"], "parameters": [{"in": "body", "name": "candidate", "required": true, "schema": {"$ref": "#/definitions/domain.CandidateInput"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}, "429": {"description": "Rate limited"}}}},
        "/candidates/{id}/documents/{docType}": {"post": {"tags": ["candidates"], "summary": "Upload a candidate document", "consumes": ["multipart/form-data"], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}, {"in": "path", "name": "docType", "type": "string", "enum": ["cv", "idCopy", "matricCert", "qualificationCert"], "required": true}, {"in": "formData", "name": "file", "type": "file", "required": true}], "responses": {"200": {"description": "Stored"}, "400": {"description": "Rejected file"}, "404": {"description": "Unknown candidate"}, "413": {"description": "Too large"}, "502": {"description": "Storage or scanner unavailable"}}}},
        "/enquiries": {"post": {"tags": ["enquiries"], "summary": "Submit a hiring enquiry", "parameters": [{"in": "body", "name": "enquiry", "required": true, "schema": {"$ref": "#/definitions/domain.EnquiryInput"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}}}},
        "/contact": {"post": {"tags": ["contact"], "summary": "Submit Contact Form", "parameters": [{"in": "body", "name": "contact", "required": true, "schema": {"$ref": "#/definitions/domain.ContactInput"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}}}},
        "/me/role": {"get": {"security": [{"BearerAuth": []}], "tags": ["me"], "summary": "Caller role", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthenticated"}}}},
        "/me/is-admin": {"get": {"security": [{"BearerAuth": []}], "tags": ["me"], "summary": "Whether the caller is an admin", "responses": {"200": {"description": "OK"}}}},
        "/me/profile": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["me"], "summary": "Caller profile", "responses": {"200": {"description": "OK"}, "404": {"description": "No profile"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["me"], "summary": "Save caller profile", "parameters": [{"in": "body", "name": "profile", "required": true, "schema": {"$ref": "#/definitions/domain.UserProfile"}}], "responses": {"200": {"description": "Saved"}}}
        },
        "/admin/candidates": {"get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "List candidates", "parameters": [{"in": "query", "name": "trade", "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Denied"}}}},
        "/admin/candidates/export": {"get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Export candidates to Excel", "produces": ["application/octet-stream"], "responses": {"200": {"description": "XLSX workbook"}}}},
        "/admin/candidates/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Update a candidate's details", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}, {"in": "body", "name": "candidate", "required": true, "schema": {"$ref": "#/definitions/domain.CandidateInput"}}], "responses": {"200": {"description": "Updated"}, "404": {"description": "Not found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Delete a candidate and their documents", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "Deleted"}, "404": {"description": "Not found"}}}
        },
        "/admin/candidates/{id}/documents/{docType}": {"get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Download a candidate document", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}, {"in": "path", "name": "docType", "type": "string", "required": true}], "responses": {"200": {"description": "File"}, "404": {"description": "Not found"}}}},
        "/admin/candidates/{id}/documents/{docType}/url": {"get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Direct link to a candidate document", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}, {"in": "path", "name": "docType", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
        "/admin/enquiries": {"get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "List enquiries", "responses": {"200": {"description": "OK"}}}},
        "/admin/enquiries/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Delete an enquiry", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "Deleted"}, "404": {"description": "Not found"}}}},
        "/admin/contact-messages": {"get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "List contact messages", "responses": {"200": {"description": "OK"}}}},
        "/admin/contact-messages/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Delete a contact message", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "Deleted"}, "404": {"description": "Not found"}}}},
        "/admin/users/{principal}/role": {"put": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Assign a role to a principal", "parameters": [{"in": "path", "name": "principal", "type": "string", "required": true}], "responses": {"200": {"description": "Assigned"}, "400": {"description": "Unknown role"}}}},
        "/admin/users/{principal}/profile": {"get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Read another user's profile", "parameters": [{"in": "path", "name": "principal", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}}
    },
    "definitions": {
        "domain.CandidateInput": {"type": "object", "required": ["fullName", "idNumber", "phoneNumber", "email", "physicalAddress", "tradeSkill", "workAreas"], "properties": {"fullName": {"type": "string"}, "idNumber": {"type": "string"}, "phoneNumber": {"type": "string"}, "email": {"type": "string"}, "physicalAddress": {"type": "string"}, "tradeSkill": {"type": "string"}, "yearsExperience": {"type": "integer"}, "workAreas": {"type": "string"}}},
        "domain.EnquiryInput": {"type": "object", "required": ["fullName", "phoneNumber", "email", "location", "serviceType", "message"], "properties": {"fullName": {"type": "string"}, "companyName": {"type": "string"}, "phoneNumber": {"type": "string"}, "email": {"type": "string"}, "location": {"type": "string"}, "serviceType": {"type": "string"}, "message": {"type": "string"}}},
        "domain.ContactInput": {"type": "object", "required": ["contactType", "fullName", "phoneNumber", "email", "message"], "properties": {"contactType": {"type": "string", "enum": ["client", "candidate"]}, "fullName": {"type": "string"}, "phoneNumber": {"type": "string"}, "email": {"type": "string"}, "message": {"type": "string"}}},
        "domain.UserProfile": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Handyman Recruitment Agency API",
	Description:      "Candidate, enquiry and contact intake plus the admin dashboard backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
