package main

// Build the API as a Lambda behind an API Gateway HTTP API:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/bootstrap"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/config"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server/respond"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

// buildRouter is swapped in tests.
var buildRouter = func() (*gin.Engine, error) {
	app, err := bootstrap.Build(config.Load())
	if err != nil {
		return nil, err
	}
	return app.Router, nil
}

// proxy adapts API Gateway v2 events to the gin router. The router is built
// on the first event of each container; a failed build is retried on the next.
type proxy struct {
	mu      sync.Mutex
	adapter *ginadapter.GinLambdaV2
}

func (p *proxy) router() (*ginadapter.GinLambdaV2, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.adapter != nil {
		return p.adapter, nil
	}
	r, err := buildRouter()
	if err != nil {
		return nil, err
	}
	p.adapter = ginadapter.NewV2(r)
	return p.adapter, nil
}

func (p *proxy) handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	adapter, err := p.router()
	if err != nil {
		telemetry.Error("lambda.bootstrap.failed", map[string]any{
			"route": req.RouteKey,
			"error": err,
		})
		return unavailable(), nil
	}
	return adapter.ProxyWithContext(ctx, req)
}

func unavailable() events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.ErrorResponse{Error: respond.ErrorBody{
		Code:    "service_unavailable",
		Message: "service is starting, retry shortly",
	}})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json", "Retry-After": "5"},
	}
}

func main() {
	telemetry.Configure(telemetry.OptionsFromEnv())
	lambda.Start((&proxy{}).handle)
}
