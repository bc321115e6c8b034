package files_test

import (
	"testing"

	"github.com/aussiebroadwan/fileaccess/pkg/filesdk"
)

// TestLivezEndpoint verifies the liveness check endpoint.
func TestLivezEndpoint(t *testing.T) {
	baseURL, cleanup := setupFilesContainer(t)
	defer cleanup()

	client := filesdk.NewClient(baseURL)

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)
}

// TestReadyzEndpoint verifies the database and blob store are reachable.
func TestReadyzEndpoint(t *testing.T) {
	baseURL, cleanup := setupFilesContainer(t)
	defer cleanup()

	client := filesdk.NewClient(baseURL)

	health, err := client.GetReadiness(t.Context())
	assertHealthy(t, health, err)

	t.Logf("Readyz checks: %+v", health.Checks)
}
