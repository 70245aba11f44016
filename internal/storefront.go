package internal

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/sukhira/storefront/internal/auth"
	"github.com/sukhira/storefront/internal/commerce"
	"github.com/sukhira/storefront/internal/config"
	"github.com/sukhira/storefront/internal/crypto"
	"github.com/sukhira/storefront/internal/customeraccount"
	"github.com/sukhira/storefront/internal/log"
	"github.com/sukhira/storefront/internal/server"
	"github.com/sukhira/storefront/internal/session"
	"github.com/sukhira/storefront/internal/wishlist"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds graceful drain on exit
const shutdownTimeout = 10 * time.Second

// Storefront is the complete storefront backend application
type Storefront struct {
	config     config.Config
	httpServer *server.HTTPServer
}

// NewStorefront builds the application with all dependencies wired
func NewStorefront(cfg config.Config) (*Storefront, error) {
	log.LogInfoWithFields("storefront", "Building storefront application", map[string]any{
		"baseURL": cfg.Server.BaseURL,
		"store":   cfg.Storefront.StoreDomain,
	})

	encryptionKey, err := config.DecodeEncryptionKey(cfg.CustomerAccount.CookieEncryptionKey)
	if err != nil {
		return nil, err
	}
	encryptor, err := crypto.NewEncryptor(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie encryptor: %w", err)
	}

	sessions := session.NewCookieStore(encryptor)
	accounts := customeraccount.NewClient(cfg.CustomerAccount)
	resolver := auth.NewResolver(accounts, sessions)

	storefrontClient := commerce.NewClient(cfg.Storefront)
	catalog := commerce.NewCatalog(storefrontClient)
	wishlistService := wishlist.NewService(accounts, cfg.MaxWishlistItems())

	handler := server.NewRouter(server.Routes{
		Auth:     auth.NewHandlers(accounts, sessions, resolver, cfg.Server.BaseURL),
		Catalog:  server.NewCatalogHandlers(catalog),
		Cart:     server.NewCartHandlers(storefrontClient),
		Wishlist: server.NewWishlistHandlers(resolver, wishlistService),
		Orders:   server.NewOrdersHandlers(resolver, accounts),
	})

	return &Storefront{
		config:     cfg,
		httpServer: server.NewHTTPServer(handler, cfg.Server.Addr),
	}, nil
}

// Run starts the application and blocks until a signal or server failure
func (s *Storefront) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := s.httpServer.Start(); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Stop(shutdownCtx)
	})

	if err := group.Wait(); err != nil && ctx.Err() == nil {
		return err
	}

	log.LogInfoWithFields("storefront", "Storefront stopped", nil)
	return nil
}
