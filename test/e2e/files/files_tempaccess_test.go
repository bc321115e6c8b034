package files_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/aussiebroadwan/fileaccess/pkg/filesdk"
	"github.com/stretchr/testify/require"
)

// TestTempAccessIssue verifies an owner can mint a token and the expiration
// is reported as an HTTP date roughly days+minutes from now.
func TestTempAccessIssue(t *testing.T) {
	baseURL, cleanup := setupFilesContainer(t)
	defer cleanup()

	client := filesdk.NewClient(baseURL)
	owner := provisionAndLogin(t, client, ownerUsername, ownerPassword)
	rec := createRecordWithFiles(t, owner, map[string]string{"myfile1": "one"})

	before := time.Now().UTC()
	access, err := owner.IssueTempAccess(t.Context(), rec.ID, 2, 30)
	require.NoError(t, err)
	require.NotEmpty(t, access.JWT)

	exp, err := http.ParseTime(access.Expiration)
	require.NoError(t, err)
	want := before.Add(2*24*time.Hour + 30*time.Minute)
	require.WithinDuration(t, want, exp, time.Minute)
}

// TestTempAccessRequiresOwnership verifies only the record owner can mint.
func TestTempAccessRequiresOwnership(t *testing.T) {
	baseURL, cleanup := setupFilesContainer(t)
	defer cleanup()

	client := filesdk.NewClient(baseURL)
	owner := provisionAndLogin(t, client, ownerUsername, ownerPassword)
	stranger := provisionAndLogin(t, client, otherUsername, otherPassword)
	rec := createRecordWithFiles(t, owner, map[string]string{"myfile1": "one"})

	_, err := stranger.IssueTempAccess(t.Context(), rec.ID, -1, -1)
	assertAPIError(t, err, filesdk.ErrForbidden)

	_, err = owner.IssueTempAccess(t.Context(), "01ARZ3NDEKTSV4RRFFQ69G5FAV", -1, -1)
	assertAPIError(t, err, filesdk.ErrNotFound)
}
