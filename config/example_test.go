package config_test

import (
	"context"
	"fmt"
	"log"

	"github.com/sagarc03/h2server/config"
)

func ExampleLoad() {
	// Load with defaults only (no config file)
	cfg, err := config.Load(nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Root: %s, Index: %v\n", cfg.Files.Root, cfg.Files.Index)
	// Output: Root: ., Index: [index.html index.htm]
}

func ExampleWithContext() {
	cfg, _ := config.Load(nil, nil)

	// Store config in context
	ctx := config.WithContext(context.Background(), cfg)

	// Retrieve later (e.g., in a subcommand)
	retrieved, err := config.FromContext(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Template extension: %s\n", retrieved.Render.TemplateExt)
	// Output: Template extension: .tmpl
}

func ExampleServerConfig_Endpoint() {
	srv := config.ServerConfig{Address: "0.0.0.0", URL: "https://localhost:8443/app"}

	ep, err := srv.Endpoint()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(ep.Addr, ep.URL(ep.Addr))
	// Output: localhost:8443 https://localhost:8443/app/
}
