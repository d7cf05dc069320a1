package workers

import (
	"context"
)

type httpServer interface {
	Start(ctx context.Context, addr string) error
}

type apiServer struct {
	server httpServer
	addr   string
}

func NewAPIServer(server httpServer, addr string) *apiServer {
	return &apiServer{server: server, addr: addr}
}

func (a *apiServer) Name() string { return "api_server" }

func (a *apiServer) Start(ctx context.Context) error {
	return a.server.Start(ctx, a.addr)
}
