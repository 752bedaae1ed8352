package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/allisson/healthshare/internal/app"
	"github.com/allisson/healthshare/internal/config"
)

// RunCleanExpiredTokens deletes share tokens that expired more than the
// specified number of days ago. Grants referencing a deleted token are removed
// by the database cascade. Supports text and JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanExpiredTokens(ctx context.Context, days int, format string) error {
	// Validate days parameter
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("cleaning expired share tokens", slog.Int("days", days))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get token use case from container
	tokenUseCase, err := container.TokenUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize token use case: %w", err)
	}

	retention := time.Duration(days) * 24 * time.Hour
	count, err := tokenUseCase.CleanExpired(ctx, retention)
	if err != nil {
		return fmt.Errorf("failed to clean expired tokens: %w", err)
	}

	// Output result based on format
	if format == "json" {
		outputCleanExpiredJSON(count, days)
	} else {
		outputCleanExpiredText(count, days)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
	)

	return nil
}

// outputCleanExpiredText outputs the result in human-readable text format.
func outputCleanExpiredText(count int64, days int) {
	fmt.Printf("Successfully deleted %d expired share token(s) older than %d day(s)\n", count, days)
}

// outputCleanExpiredJSON outputs the result in JSON format for machine consumption.
func outputCleanExpiredJSON(count int64, days int) {
	result := map[string]interface{}{
		"count": count,
		"days":  days,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Println(string(jsonBytes))
}
