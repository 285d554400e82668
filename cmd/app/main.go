package main

import (
	"context"

	"github.com/brightleaf-health/epi-preprocessor/internal/service"
)

func main() {
	ctx := context.Background()

	svc, err := service.NewEPIService()
	if err != nil {
		panic(err)
	}

	if err := svc.Start(ctx); err != nil {
		panic(err)
	}
}
