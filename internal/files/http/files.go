package http

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/fileaccess/internal/files/domain"
	"github.com/aussiebroadwan/fileaccess/internal/files/service"
	"github.com/aussiebroadwan/fileaccess/pkg/filesdk"
	"github.com/aussiebroadwan/fileaccess/pkg/httpx"
	"github.com/aussiebroadwan/fileaccess/pkg/slogx"
)

// ForceDownloadContentType makes browsers save object downloads instead of
// rendering them.
const ForceDownloadContentType = "application/force-download"

type FilesHandler struct {
	AccessGate     *service.AccessGate
	ObjectService  *service.ObjectService
	MaxUploadBytes int64
	SpoolDir       string
}

// HandleGet downloads one object, or the whole bucket as files.zip.
//
//	@Summary		Download a file
//	@Description	Serves one version of a file. A jwt issued for this bucket authorizes the download without a session;
//	@Description	otherwise the caller needs read permission on the record. With all=true every file of the bucket is
//	@Description	returned as an uncompressed ZIP named files.zip.
//	@Tags			Files
//	@Produce		application/force-download
//	@Produce		application/zip
//	@Security		BearerAuth
//	@Param			bucket_id	path		string	true	"Bucket ID"
//	@Param			key			path		string	true	"Object key"
//	@Param			versionId	query		string	false	"Object version, defaults to the latest"
//	@Param			jwt			query		string	false	"Temporary access token"
//	@Param			all			query		bool	false	"Download every file of the bucket"
//	@Success		200			{file}		binary
//	@Failure		400			{object}	filesdk.ErrorResponse	"Invalid or expired token"
//	@Failure		403			{object}	filesdk.ErrorResponse	"Logged in without read permission"
//	@Failure		404			{object}	filesdk.ErrorResponse	"Unknown bucket or file, or no access"
//	@Failure		501			{object}	filesdk.ErrorResponse	"Multipart uploads"
//	@Router			/v1/files/{bucket_id}/{key} [get].
func (h *FilesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("uploadId") || q.Has("uploads") {
		filesdk.ErrNotImplemented.WriteError(w)
		return
	}

	all, ok := boolParam(q.Get("all"))
	if !ok {
		filesdk.ErrInvalidRequest.WithDescription("all must be a boolean").WriteError(w)
		return
	}

	bucketID := r.PathValue("bucket_id")
	key := r.PathValue("key")
	token := q.Get("jwt")

	if all {
		h.serveArchive(w, r, bucketID, token)
		return
	}
	if key == "" {
		filesdk.ErrNotFound.WriteError(w)
		return
	}

	dl, err := h.AccessGate.FetchObject(r.Context(), service.ObjectRequest{
		BucketID:  bucketID,
		Key:       key,
		VersionID: q.Get("versionId"),
		Token:     token,
		Principal: principal(r),
		HeadOnly:  r.Method == http.MethodHead,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer dl.Body.Close()

	serveObject(w, r, dl)
}

func serveObject(w http.ResponseWriter, r *http.Request, dl *service.ObjectDownload) {
	obj := dl.Object

	h := w.Header()
	h.Set("Content-Type", ForceDownloadContentType)
	h.Set("ETag", strconv.Quote(obj.Checksum))
	h.Set("X-Version-Id", obj.VersionID)
	httpx.Attachment(w, path.Base(obj.Key))

	if rs, ok := dl.Body.(io.ReadSeeker); ok {
		http.ServeContent(w, r, "", obj.UpdatedAt, rs)
		return
	}

	h.Set("Last-Modified", obj.UpdatedAt.UTC().Format(http.TimeFormat))
	h.Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, dl.Body); err != nil {
		slogx.FromContext(r.Context()).Warn("download interrupted",
			slog.String("bucket_id", obj.BucketID),
			slog.String("key", obj.Key),
			slog.Any("err", err),
		)
	}
}

// serveArchive builds the archive in a spool file first so a storage error
// still produces a clean error response instead of a truncated ZIP.
func (h *FilesHandler) serveArchive(w http.ResponseWriter, r *http.Request, bucketID, token string) {
	l := slogx.FromContext(r.Context())
	req := service.BucketRequest{
		BucketID:  bucketID,
		Token:     token,
		Principal: principal(r),
	}

	// HEAD answers with the archive headers only. The size is unknown
	// without building it.
	if r.Method == http.MethodHead {
		info, err := h.AccessGate.StatBucket(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Last-Modified", info.LastModified.UTC().Format(http.TimeFormat))
		httpx.Attachment(w, service.ArchiveFilename)
		w.WriteHeader(http.StatusOK)
		return
	}

	spool, err := os.CreateTemp(h.SpoolDir, "archive-*.zip")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer func() {
		_ = spool.Close()
		if err := os.Remove(spool.Name()); err != nil {
			l.Warn("failed to remove archive spool", slog.Any("err", err))
		}
	}()

	info, err := h.AccessGate.FetchBucket(r.Context(), req, spool)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	httpx.Attachment(w, service.ArchiveFilename)
	http.ServeContent(w, r, "", info.LastModified, spool)
}

// HandlePut uploads a new version of an object.
//
//	@Summary		Upload a file
//	@Description	Stores the request body as the latest version of the key. Only the record owner may upload.
//	@Tags			Files
//	@Accept			application/octet-stream
//	@Produce		json
//	@Security		BearerAuth
//	@Param			bucket_id	path		string	true	"Bucket ID"
//	@Param			key			path		string	true	"Object key"
//	@Success		201			{object}	filesdk.ObjectResponse
//	@Failure		400			{object}	filesdk.ErrorResponse
//	@Failure		401			{object}	filesdk.ErrorResponse
//	@Failure		403			{object}	filesdk.ErrorResponse
//	@Failure		404			{object}	filesdk.ErrorResponse
//	@Failure		413			{object}	filesdk.ErrorResponse
//	@Router			/v1/files/{bucket_id}/{key} [put].
func (h *FilesHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	if h.MaxUploadBytes > 0 {
		if r.ContentLength > h.MaxUploadBytes {
			filesdk.ErrRequestTooLarge.WriteError(w)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}

	obj, err := h.ObjectService.Upload(r.Context(), service.UploadRequest{
		BucketID:    r.PathValue("bucket_id"),
		Key:         r.PathValue("key"),
		ContentType: r.Header.Get("Content-Type"),
		Body:        r.Body,
		Principal:   principal(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toObjectResponse(obj))
}

func toObjectResponse(obj domain.Object) filesdk.ObjectResponse {
	return filesdk.ObjectResponse{
		VersionID: obj.VersionID,
		BucketID:  obj.BucketID,
		Key:       obj.Key,
		Size:      obj.Size,
		Checksum:  obj.Checksum,
		MimeType:  obj.MimeType,
		IsHead:    obj.IsHead,
		CreatedAt: obj.CreatedAt,
	}
}

// boolParam accepts the usual spellings of a query flag. Empty is false.
func boolParam(raw string) (bool, bool) {
	switch strings.ToLower(raw) {
	case "", "0", "f", "false", "n", "no", "off":
		return false, true
	case "1", "t", "true", "y", "yes", "on":
		return true, true
	}
	return false, false
}
