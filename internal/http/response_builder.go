package http

import (
	"encoding/json"
	"net/http"
)

// ResponseBuilder provides a fluent API for building JSON and download
// responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       []byte
	errBody    *errorBody // encoded at Write so RequestID can still amend it
	err        error
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON encodes v as the body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.headers["Content-Type"] = "application/json; charset=utf-8"
	b.body, b.err = json.Marshal(v)
	return b
}

func (b *ResponseBuilder) Body(data []byte) *ResponseBuilder {
	b.body = data
	return b
}

// Download sends data as an attachment named filename.
func (b *ResponseBuilder) Download(contentType, filename string, data []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.headers["Content-Disposition"] = `attachment; filename="` + filename + `"`
	b.body = data
	return b
}

// RequestID stamps id on an error response so clients can quote it.
func (b *ResponseBuilder) RequestID(id string) *ResponseBuilder {
	if b.errBody != nil {
		b.errBody.RequestID = id
	}
	return b
}

func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	if b.errBody != nil {
		b.body, b.err = json.Marshal(b.errBody)
	}
	if b.err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error      string `json:"error"`
	Field      string `json:"field,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
}

func errorResponse(statusCode int, body errorBody) *ResponseBuilder {
	b := NewResponse().Status(statusCode)
	b.headers["Content-Type"] = "application/json; charset=utf-8"
	b.errBody = &body
	return b
}

func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return errorResponse(statusCode, errorBody{Error: message})
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// ValidationFailed reports a rejected field with an optional suggestion.
func ValidationFailed(field, message, suggestion string) *ResponseBuilder {
	return errorResponse(http.StatusUnprocessableEntity, errorBody{Error: message, Field: field, Suggestion: suggestion})
}
