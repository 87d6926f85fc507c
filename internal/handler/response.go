package handler

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
)

// Every response carries the same permissive CORS surface; the static
// client is served from a different origin than the API stage.
var responseHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type",
	"Access-Control-Allow-Methods": "GET, POST, PATCH, DELETE, OPTIONS, PUT",
}

// buildResponse wraps a status and an optional body into the proxy
// envelope. A nil body produces an empty response body (the health check).
func buildResponse(status int, body interface{}) events.APIGatewayProxyResponse {
	resp := events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    responseHeaders,
	}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return events.APIGatewayProxyResponse{
				StatusCode: 500,
				Headers:    responseHeaders,
				Body:       `{"error":"failed to encode response"}`,
			}
		}
		resp.Body = string(b)
	}
	return resp
}

type errorBody struct {
	Error string `json:"error"`
}

func errorResponse(status int, msg string) events.APIGatewayProxyResponse {
	return buildResponse(status, errorBody{Error: msg})
}
