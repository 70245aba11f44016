package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sukhira/storefront/internal"
	"github.com/sukhira/storefront/internal/config"
	"github.com/sukhira/storefront/internal/log"
)

var BuildVersion = "dev"

func generateDefaultConfig(path string) error {
	defaultConfig := map[string]any{
		"version": "v1",
		"server": map[string]any{
			"baseURL": "https://shop.example.com",
			"addr":    ":8080",
		},
		"storefront": map[string]any{
			"storeDomain": "your-shop.myshopify.com",
			"apiVersion":  config.DefaultAPIVersion,
			"accessToken": map[string]string{"$env": "STOREFRONT_ACCESS_TOKEN"},
		},
		"customerAccount": map[string]any{
			"clientId":            "shp_00000000-0000-0000-0000-000000000000",
			"authDomain":          "https://shopify.com/your-shop",
			"redirectUri":         "https://shop.example.com/auth/callback",
			"cookieEncryptionKey": map[string]string{"$env": "COOKIE_ENCRYPTION_KEY"},
		},
		"limits": map[string]any{
			"maxWishlistItems": config.DefaultMaxWishlistItems,
		},
	}

	data, err := json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func main() {
	conf := flag.String("config", "", "path to config file (required)")
	version := flag.Bool("version", false, "print version and exit")
	configInit := flag.String("config-init", "", "generate default config file at specified path")
	validate := flag.Bool("validate", false, "validate config file and exit")
	flag.Parse()

	if *version {
		fmt.Println(BuildVersion)
		return
	}
	if *configInit != "" {
		if err := generateDefaultConfig(*configInit); err != nil {
			log.LogError("Failed to generate config: %v", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default config at: %s\n", *configInit)
		return
	}

	if *conf == "" {
		fmt.Fprintf(os.Stderr, "Error: -config flag is required\n")
		os.Exit(1)
	}

	cfg, err := config.Load(*conf)
	if err != nil {
		log.LogError("Failed to load config: %v", err)
		os.Exit(1)
	}

	if *validate {
		fmt.Println("Config OK")
		return
	}

	log.LogInfoWithFields("main", "Starting storefront", map[string]any{
		"version": BuildVersion,
		"config":  *conf,
	})

	app, err := internal.NewStorefront(cfg)
	if err != nil {
		log.LogError("Failed to build storefront: %v", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		log.LogError("Storefront exited with error: %v", err)
		os.Exit(1)
	}
}
