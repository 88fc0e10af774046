// Package proxy provides the shared skeleton for the aws lambda functions that
// sit behind an aws api gateway v2 (http) integration and forward requests to
// third party APIs.
//
// Requests arrive as events.APIGatewayV2HTTPRequest and are routed by a small
// regex Router to a RouteHandler, which answers with an
// events.APIGatewayProxyResponse. NewFunctionRouter wires the parts every
// function shares: CORS preflight, POST-only method gating and the JSON error
// envelope. HTTPHandler exposes any Router over net/http for local use.
//
// The router is designed to be as simplistic as possible and is not feature
// rich.
package proxy
