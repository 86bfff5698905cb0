package stapi

// Document is an OpenAPI 3.0 document
type Document struct {
	OpenAPI string              `json:"openapi" yaml:"openapi"`
	Info    Info                `json:"info" yaml:"info"`
	Servers []Server            `json:"servers,omitempty" yaml:"servers,omitempty"`
	Paths   map[string]PathItem `json:"paths" yaml:"paths"`
}

// Info contains API metadata
type Info struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version" yaml:"version"`
}

// Server defines an API server
type Server struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PathItem maps lower-case HTTP methods to their operations
type PathItem map[string]*Operation

// Operation describes a single API operation on a path
type Operation struct {
	OperationID string               `json:"operationId" yaml:"operationId"`
	Parameters  []Parameter          `json:"parameters" yaml:"parameters"`
	RequestBody *RequestBody         `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]*Response `json:"responses" yaml:"responses"`
}

// Parameter describes a path, query or header parameter
type Parameter struct {
	Name     string         `json:"name" yaml:"name"`
	In       string         `json:"in" yaml:"in"`
	Required bool           `json:"required" yaml:"required"`
	Schema   map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// RequestBody describes the request body of an operation
type RequestBody struct {
	Required bool                 `json:"required" yaml:"required"`
	Content  map[string]MediaType `json:"content" yaml:"content"`
}

// MediaType describes the content of one media type
type MediaType struct {
	Schema   map[string]any     `json:"schema,omitempty" yaml:"schema,omitempty"`
	Examples map[string]Example `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// Example is a named example value
type Example struct {
	Value       any    `json:"value" yaml:"value"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Response describes a single response of an operation
type Response struct {
	Description string               `json:"description" yaml:"description"`
	Headers     map[string]Header    `json:"headers,omitempty" yaml:"headers,omitempty"`
	Content     map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

// Header describes a response header
type Header struct {
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      map[string]any `json:"schema" yaml:"schema"`
}
