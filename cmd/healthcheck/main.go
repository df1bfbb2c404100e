package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	flag "github.com/spf13/pflag"
)

// Struct to match the API's "writeResponse" wrapper
type HealthResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Status string `json:"status"`
	} `json:"data"`
}

func main() {
	url := flag.String("url", "http://localhost:8080/health", "health endpoint to probe")
	timeout := flag.Duration("timeout", 3*time.Second, "overall probe timeout")
	flag.Parse()

	if err := check(*url, *timeout); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	fmt.Println("Health check passed")
}

func check(url string, timeout time.Duration) error {
	client := &http.Client{Timeout: timeout}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "healthcheck/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to parse health response: %w", err)
	}

	// The status lives inside the data envelope
	if health.Data.Status != "healthy" {
		return fmt.Errorf("service is not healthy: %s", health.Data.Status)
	}
	return nil
}
