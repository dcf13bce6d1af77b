// Package api defines the wire-level request and response types shared by
// all HTTP endpoints. Every endpoint answers with the same envelope so
// clients never have to branch on the response shape.
package api

import "gastronomy_backend/internal/feature/auth/domain/entity"

// Body is the payload section of the response envelope. Token, RefreshToken
// and User are only present on successful auth responses.
type Body struct {
	Text         string             `json:"text"`
	Token        string             `json:"token,omitempty"`
	RefreshToken string             `json:"refreshToken,omitempty"`
	User         *entity.PublicUser `json:"user,omitempty"`
}

// Response is the uniform envelope returned by every endpoint.
// StatusCode mirrors the HTTP status so clients behind proxies that rewrite
// statuses can still rely on the JSON.
type Response struct {
	Success    bool `json:"success"`
	StatusCode int  `json:"statusCode"`
	Body       Body `json:"body"`
}

// OK builds a success envelope with the given status and payload.
func OK(status int, body Body) Response {
	return Response{Success: true, StatusCode: status, Body: body}
}

// Fail builds a failure envelope carrying only a message.
func Fail(status int, text string) Response {
	return Response{Success: false, StatusCode: status, Body: Body{Text: text}}
}
