package main

import (
	"context"
	"log"

	"github.com/tripveo/account-security-service/internal/app/bootstrap"
)

func main() {
	ctx := context.Background()
	runtime, err := bootstrap.NewRuntime(ctx, "configs/default.yaml")
	if err != nil {
		log.Fatalf("bootstrap reconcile runtime: %v", err)
	}
	if err := runtime.RunReconcile(ctx); err != nil {
		log.Fatalf("run reconcile: %v", err)
	}
}
