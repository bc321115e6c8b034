/*
Package filesdk is a client SDK for the temporary file access service.

# Client vs Session

Client covers the unauthenticated surface: health checks, user provisioning
with the bootstrap token, login, and downloads that carry a temporary access
token. Session wraps a login and adds the owner operations.

	client := filesdk.NewClient("https://files.example.com")

	session, err := client.Login(ctx, "alice", "correct horse")
	rec, err := session.CreateRecord(ctx, filesdk.CreateRecordRequest{Title: "survey"})
	_, err = session.Upload(ctx, rec.BucketID, "data.csv", "text/csv", f)

	access, err := session.IssueTempAccess(ctx, rec.ID, 7, 0)
	link := client.TempAccessURL(rec.BucketID, "data.csv", access.JWT)

Anyone holding the link can download the file until the token expires:

	dl, err := client.DownloadObject(ctx, rec.BucketID, "data.csv", filesdk.DownloadOptions{JWT: access.JWT})
	defer dl.Body.Close()

# Errors

Every non-2xx response is returned as an *APIError carrying the HTTP status
and the service error code. Compare with errors.Is against the predefined
values, which match on Code:

	if errors.Is(err, filesdk.ErrNotFound) { ... }
*/
package filesdk
